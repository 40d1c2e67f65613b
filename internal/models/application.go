// internal/models/application.go
package models

import (
	"database/sql"
	"time"
)

// Application is one row of the Applications table.
type Application struct {
	ApplicationID                 string         `json:"applicationId"`
	ID                            string         `json:"id"`
	ApplicationTypeID             string         `json:"applicationTypeId"`
	CachedLastUpdate              time.Time      `json:"cachedLastUpdate"`
	DecisionDate                  time.Time      `json:"decisionDate"`
	ProjectName                   string         `json:"projectName"`
	Submission                    time.Time      `json:"submission"`
	ProjectManager                sql.NullString `json:"projectManager"`
	Assuror                       sql.NullString `json:"assuror"`
	DecisionMaker                 sql.NullString `json:"decisionMaker"`
	Modified                      time.Time      `json:"modified"`
	ApplicationType               string         `json:"applicationType"`
	ApplicationTypeVariantVersion string         `json:"applicationTypeVariantVersion"`
	CaseType                      string         `json:"caseType"`
	CompletenessAcknowledgement   time.Time      `json:"completenessAcknowledgement"`
	IssuingAuthority              string         `json:"issuingAuthority"`
	EIN                           sql.NullString `json:"ein"`
	LegalDenomination             string         `json:"legalDenomination"`
	ApplicationStatus             string         `json:"applicationStatus"`
	Phase                         string         `json:"phase"`
	Subcategory                   string         `json:"subcategory"`
	IsWholeEU                     bool           `json:"isWholeEu"`
	PreEngaged                    bool           `json:"preEngaged"`
}

// ApplicationColumns lists the Applications columns in insert order.
var ApplicationColumns = []string{
	"application_id", "id", "application_type_id", "cached_last_update", "decision_date",
	"project_name", "submission", "project_manager", "assuror", "decision_maker",
	"modified", "application_type", "application_type_variant_version", "case_type",
	"completeness_acknowledgement", "issuing_authority", "ein", "legal_denomination",
	"application_status", "phase", "subcategory", "is_whole_eu", "pre_engaged",
}

// Values returns the row in ApplicationColumns order.
func (a *Application) Values() []interface{} {
	return []interface{}{
		a.ApplicationID, a.ID, a.ApplicationTypeID, a.CachedLastUpdate, a.DecisionDate,
		a.ProjectName, a.Submission, a.ProjectManager, a.Assuror, a.DecisionMaker,
		a.Modified, a.ApplicationType, a.ApplicationTypeVariantVersion, a.CaseType,
		a.CompletenessAcknowledgement, a.IssuingAuthority, a.EIN, a.LegalDenomination,
		a.ApplicationStatus, a.Phase, a.Subcategory, a.IsWholeEU, a.PreEngaged,
	}
}

type Assessor struct {
	AssessorID int64  `json:"assessorId"`
	Name       string `json:"name"`
}

type ApplicationAssessor struct {
	ApplicationID string `json:"applicationId"`
	AssessorID    int64  `json:"assessorId"`
}

type ApplicationMemberState struct {
	ApplicationID string `json:"applicationId"`
	StateCode     string `json:"stateCode"`
}

type Vehicle struct {
	ApplicationID string `json:"applicationId"`
	Identifier    string `json:"identifier"`
}

// Table names of the pre-existing schema.
const (
	TableApplications            = "Applications"
	TableAssessors               = "Assessors"
	TableApplicationAssessors    = "ApplicationAssessors"
	TableApplicationMemberStates = "ApplicationMemberStates"
	TableVehicles                = "Vehicles"
)
