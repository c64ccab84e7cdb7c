package handler

import (
	"strings"

	"lodgeguard/internal/complaint/models"
	"lodgeguard/internal/complaint/service"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

// RecordRequest is the body of POST /complaints. Either unit_id or
// occupant_id must be set; student_id is optional and must match the caller.
type RecordRequest struct {
	UnitID       string `json:"unit_id"`
	OccupantID   string `json:"occupant_id"`
	StudentID    string `json:"student_id"`
	Severity     int    `json:"severity"`
	IncidentType string `json:"incident_type"`
	Message      string `json:"message"`

	unitID    *id.UnitID
	studentID *id.StudentID
	incident  models.IncidentType
}

func (r *RecordRequest) Validate() error {
	r.UnitID = strings.TrimSpace(r.UnitID)
	r.OccupantID = strings.TrimSpace(r.OccupantID)
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Message = strings.TrimSpace(r.Message)

	if r.UnitID == "" && r.OccupantID == "" {
		return dErrors.New(dErrors.CodeValidation, "unit_id or occupant_id is required")
	}
	if r.UnitID != "" {
		unitID, err := id.ParseUnitID(r.UnitID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "invalid unit_id")
		}
		r.unitID = &unitID
	}
	if r.StudentID != "" {
		studentID, err := id.ParseStudentID(r.StudentID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "invalid student_id")
		}
		r.studentID = &studentID
	}
	incident, err := models.ParseIncidentType(r.IncidentType)
	if err != nil {
		return err
	}
	r.incident = incident
	return nil
}

func (r *RecordRequest) ToService(studentID id.StudentID) service.RecordRequest {
	return service.RecordRequest{
		StudentID:    studentID,
		UnitID:       r.unitID,
		OccupantID:   r.OccupantID,
		Severity:     r.Severity,
		IncidentType: r.incident,
		Message:      r.Message,
	}
}

// parseFilter reads ?status= and ?incident_type=; empty values match all.
func parseFilter(status, incident string) (models.Filter, error) {
	var f models.Filter
	if status != "" {
		st, err := models.ParseSLAStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if incident != "" {
		t, err := models.ParseIncidentType(incident)
		if err != nil {
			return f, err
		}
		f.IncidentType = t
	}
	return f, nil
}
