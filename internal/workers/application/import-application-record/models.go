// internal/workers/application/import-application-record/models.go
package importapplicationrecord

import (
	"time"

	"application-import/internal/models"
)

type Input struct {
	DocumentPath string `json:"documentPath"`
	ImportID     string `json:"importId,omitempty"` // generated when empty
}

type Output struct {
	ImportID         string        `json:"importId"`
	ApplicationID    string        `json:"applicationId"`
	AssessorLinks    int           `json:"assessorLinks"`
	AssessorsCreated int           `json:"assessorsCreated"`
	MemberStates     int           `json:"memberStates"`
	Vehicles         int           `json:"vehicles"`
	Duration         time.Duration `json:"duration"`
}

// RowsPerTable reports how many rows the import inserted into each table.
func (o *Output) RowsPerTable() map[string]int {
	return map[string]int{
		models.TableApplications:            1,
		models.TableAssessors:               o.AssessorsCreated,
		models.TableApplicationAssessors:    o.AssessorLinks,
		models.TableApplicationMemberStates: o.MemberStates,
		models.TableVehicles:                o.Vehicles,
	}
}
