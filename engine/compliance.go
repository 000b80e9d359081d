package engine

import (
	"math"

	"github.com/safetrack/safetrack/repository/models"
)

// MatrixFilter narrows the compliance matrix to a year and optional area.
type MatrixFilter struct {
	Year   int
	AreaID string
}

// MatrixCell is one (category, month) cell of the compliance matrix.
type MatrixCell struct {
	Month       int    `json:"month"`
	Planned     int    `json:"planned"`
	Executed    int    `json:"executed"`
	StatusClass string `json:"status"`
}

// MatrixRow aggregates one category across the twelve months.
type MatrixRow struct {
	Category      string         `json:"category"`
	Evidence      string         `json:"evidence"`
	Responsible   string         `json:"responsible"`
	Cells         [12]MatrixCell `json:"cells"`
	TotalPlanned  int            `json:"total_planned"`
	TotalExecuted int            `json:"total_executed"`
	Compliance    float64        `json:"compliance"`
}

// MonthlyStat is the per-month summary across all categories.
type MonthlyStat struct {
	Planned    int     `json:"planned"`
	Executed   int     `json:"executed"`
	Compliance float64 `json:"compliance"`
}

// ComplianceMatrix is the schedule-versus-execution rollup per category
// per month. Read-only, derived; no stored state.
type ComplianceMatrix struct {
	Year             int             `json:"year"`
	Rows             []MatrixRow     `json:"rows"`
	Monthly          [12]MonthlyStat `json:"monthly"`
	TotalPlanned     int             `json:"total_planned"`
	TotalExecuted    int             `json:"total_executed"`
	GlobalCompliance float64         `json:"global_compliance"`
}

// BuildComplianceMatrix rolls up planned versus executed counts for each
// category and month of the filtered year. For a cell: planned counts
// schedule items in the month; executed counts schedule items marked Done
// plus inspection records with no schedule link. Follow-up records are
// excluded so corrective work is not double-counted as new compliance.
func BuildComplianceMatrix(store Store, filter MatrixFilter) (*ComplianceMatrix, error) {
	scheduled, err := store.ListScheduleItems(ScheduleFilter{Year: filter.Year, AreaID: filter.AreaID})
	if err != nil {
		return nil, persistenceErr("list schedule items", err)
	}
	executed, err := store.ListInspections(InspectionFilter{
		Year:             filter.Year,
		AreaID:           filter.AreaID,
		UnlinkedOnly:     true,
		ExcludeFollowUps: true,
	})
	if err != nil {
		return nil, persistenceErr("list inspections", err)
	}

	matrix := &ComplianceMatrix{Year: filter.Year}

	for _, category := range Categories() {
		spec, _ := LookupCategory(category)
		row := MatrixRow{Category: category, Evidence: spec.Evidence, Responsible: models.RoleEquipoSST}

		for _, item := range scheduled {
			if item.Category != category {
				continue
			}
			if row.Responsible == models.RoleEquipoSST && item.Responsible != nil {
				row.Responsible = item.Responsible.FullName
			}
			m := int(item.ScheduledDate.Month()) - 1
			row.Cells[m].Planned++
			if item.Status == models.ScheduleStatusDone {
				row.Cells[m].Executed++
			}
		}
		for _, record := range executed {
			if record.Category != category {
				continue
			}
			m := int(record.InspectionDate.Month()) - 1
			row.Cells[m].Executed++
		}

		for m := range row.Cells {
			row.Cells[m].Month = m + 1
			row.Cells[m].StatusClass = cellStatus(row.Cells[m].Planned, row.Cells[m].Executed)
			row.TotalPlanned += row.Cells[m].Planned
			row.TotalExecuted += row.Cells[m].Executed
		}
		row.Compliance = compliancePct(row.TotalPlanned, row.TotalExecuted)

		matrix.Rows = append(matrix.Rows, row)
		matrix.TotalPlanned += row.TotalPlanned
		matrix.TotalExecuted += row.TotalExecuted
	}

	for m := 0; m < 12; m++ {
		var stat MonthlyStat
		for _, row := range matrix.Rows {
			stat.Planned += row.Cells[m].Planned
			stat.Executed += row.Cells[m].Executed
		}
		stat.Compliance = compliancePct(stat.Planned, stat.Executed)
		matrix.Monthly[m] = stat
	}
	matrix.GlobalCompliance = compliancePct(matrix.TotalPlanned, matrix.TotalExecuted)

	return matrix, nil
}

// compliancePct follows the reporting rule: executed/planned when
// anything was planned, 100 when only unplanned work exists, 0 when
// nothing happened at all.
func compliancePct(planned, executed int) float64 {
	if planned > 0 {
		return math.Round(float64(executed)/float64(planned)*1000) / 10
	}
	if executed > 0 {
		return 100
	}
	return 0
}

func cellStatus(planned, executed int) string {
	switch {
	case planned > 0 && executed >= planned:
		return "E"
	case planned > 0 && executed > 0:
		return "P+E"
	case planned > 0:
		return "P"
	case executed > 0:
		return "E"
	}
	return "MISS"
}
