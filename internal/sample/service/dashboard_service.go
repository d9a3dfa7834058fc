package service

import (
	"sort"
	"strings"
	"time"

	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

// DashboardService 현황 집계 서비스
type DashboardService struct {
	store *store.Store
	now   func() time.Time
}

// NewDashboardService 현황 집계 서비스 생성
func NewDashboardService(st *store.Store) *DashboardService {
	return &DashboardService{store: st, now: time.Now}
}

// CompanyCount 회사별 건수
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Summary 전체 현황 집계
type Summary struct {
	Total        int                  `json:"total"`
	ByStage      map[entity.Stage]int `json:"by_stage"`
	OverdueCount int                  `json:"overdue_count"`
	Companies    int                  `json:"companies"`
	TopCompanies []CompanyCount       `json:"top_companies"`
}

// Summarize 대장 전체를 한 번 훑어 현황을 만든다.
func (s *DashboardService) Summarize() Summary {
	records := s.store.All()
	now := s.now()

	summary := Summary{
		Total:   len(records),
		ByStage: make(map[entity.Stage]int),
	}
	byCompany := make(map[string]int)

	for i := range records {
		r := &records[i]
		summary.ByStage[entity.DeriveStage(r)]++
		if entity.Overdue(r, now) {
			summary.OverdueCount++
		}
		if company := strings.TrimSpace(r.Company); company != "" {
			byCompany[company]++
		}
	}

	summary.Companies = len(byCompany)
	for company, count := range byCompany {
		summary.TopCompanies = append(summary.TopCompanies, CompanyCount{Company: company, Count: count})
	}
	sort.Slice(summary.TopCompanies, func(i, j int) bool {
		if summary.TopCompanies[i].Count != summary.TopCompanies[j].Count {
			return summary.TopCompanies[i].Count > summary.TopCompanies[j].Count
		}
		return summary.TopCompanies[i].Company < summary.TopCompanies[j].Company
	})
	if len(summary.TopCompanies) > 5 {
		summary.TopCompanies = summary.TopCompanies[:5]
	}
	return summary
}
