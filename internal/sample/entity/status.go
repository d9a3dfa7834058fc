package entity

import "time"

// Stage 파생 진행 단계. 저장되지 않고 조회 시점에만 계산된다.
type Stage string

const (
	StageIntake       Stage = "Intake"
	StageMaterialPrep Stage = "MaterialPrep"
	StageInProduction Stage = "InProduction"
	StageReadyToShip  Stage = "ReadyToShip"
	StageShipped      Stage = "Shipped"
)

// DeriveStage 날짜 필드만 보고 진행 단계를 계산한다.
// 뒤 단계 날짜가 채워져 있으면 앞 단계 기록 여부와 무관하게 그 단계로 본다
// (가장 늦은 마커 우선, 고정 우선순위).
func DeriveStage(r *Record) Stage {
	switch {
	case r.ShippedDate.Valid():
		return StageShipped
	case r.SampleCompletedDate.Valid():
		return StageReadyToShip
	case r.MaterialArrivalDate.Valid():
		return StageInProduction
	case r.MaterialRequestDate.Valid(), r.DrawingReceivedDate.Valid():
		return StageMaterialPrep
	}
	return StageIntake
}

// Overdue 납기 경과 여부. 납기일이 있고, 오늘보다 이전이고, 출하일이 없을 때만 true.
// 납기일이 없거나 파싱 불가능하면 overdue가 아니다(fail-open).
func Overdue(r *Record, now time.Time) bool {
	if !r.DueDate.Valid() || r.ShippedDate.Valid() {
		return false
	}
	return r.DueDate.Before(DateOf(now))
}
