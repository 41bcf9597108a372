package models_test

import (
	"testing"

	"pricewatch/internal/models"
)

func TestAlertKindIsValid(t *testing.T) {
	valid := []models.AlertKind{
		models.KindTargetReached,
		models.KindDrop,
		models.KindChange,
	}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("kind %s should be valid", k)
		}
	}

	if models.AlertKind("spike").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}
