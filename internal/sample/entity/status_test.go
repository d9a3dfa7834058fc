package entity

import (
	"testing"
	"time"
)

func TestDeriveStagePriority(t *testing.T) {
	var r Record
	if got := DeriveStage(&r); got != StageIntake {
		t.Errorf("empty record should be %s, got %s", StageIntake, got)
	}

	r.DrawingReceivedDate = ParseDate("2024-12-01")
	if got := DeriveStage(&r); got != StageMaterialPrep {
		t.Errorf("drawing received should be %s, got %s", StageMaterialPrep, got)
	}

	r.MaterialArrivalDate = ParseDate("2024-12-10")
	if got := DeriveStage(&r); got != StageInProduction {
		t.Errorf("material arrived should be %s, got %s", StageInProduction, got)
	}

	r.SampleCompletedDate = ParseDate("2024-12-18")
	if got := DeriveStage(&r); got != StageReadyToShip {
		t.Errorf("sample completed should be %s, got %s", StageReadyToShip, got)
	}

	// The latest marker wins even when earlier ones are also set.
	r.ShippedDate = ParseDate("2024-12-20")
	if got := DeriveStage(&r); got != StageShipped {
		t.Errorf("shipped should be %s, got %s", StageShipped, got)
	}
}

func TestDeriveStageSkipsMissingEarlierMarkers(t *testing.T) {
	// Shipped date alone is enough, even if nothing else was recorded.
	var r Record
	r.ShippedDate = ParseDate("2024-12-20")
	if got := DeriveStage(&r); got != StageShipped {
		t.Errorf("shipped alone should be %s, got %s", StageShipped, got)
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	var r Record
	r.DueDate = ParseDate("2024-06-01")
	if !Overdue(&r, now) {
		t.Error("past due date without shipment should be overdue")
	}

	r.ShippedDate = ParseDate("2024-06-10")
	if Overdue(&r, now) {
		t.Error("shipped record should never be overdue")
	}

	r = Record{}
	if Overdue(&r, now) {
		t.Error("missing due date should not be overdue")
	}

	r.DueDate = ParseDate("2024-06-15")
	if Overdue(&r, now) {
		t.Error("due today should not be overdue yet")
	}
}
