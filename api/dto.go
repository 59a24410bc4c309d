/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags; handlers run them
  through the shared validator before touching the engine. Date strings
  are YYYY-MM-DD and parsed in handlers.
*/
package api

import (
	"github.com/surajpratapsingh112/signal-office-management-sub000/calendar"
	"github.com/surajpratapsingh112/signal-office-management-sub000/leave"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateLeaveRequest is the body for POST /api/leaves.
type CreateLeaveRequest struct {
	EmployeeID      string   `json:"employee_id" validate:"required"`
	LeaveType       string   `json:"leave_type" validate:"required,oneof=CL RL EL MEDICAL MATERNITY CCL"`
	StartDate       string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	PermissionDates []string `json:"permission_dates" validate:"dive,datetime=2006-01-02"`
	Remarks         string   `json:"remarks"`
}

// ExtendLeaveRequest is the body for POST /api/leaves/{id}/extend.
type ExtendLeaveRequest struct {
	ExtendedDays int    `json:"extended_days" validate:"required,min=1"`
	Reason       string `json:"reason"`
}

// AddMedicalRestRequest is the body for POST /api/leaves/{id}/medical.
// AsOf is the reference day for the availed/cancelled split; it is
// explicit so the operation is deterministic.
type AddMedicalRestRequest struct {
	MedicalDays int    `json:"medical_days" validate:"required,min=1"`
	Reason      string `json:"reason" validate:"required"`
	AsOf        string `json:"as_of" validate:"required,datetime=2006-01-02"`
}

// ExtendMedicalRequest is the body for POST /api/leaves/{id}/medical/extend.
type ExtendMedicalRequest struct {
	AdditionalDays int    `json:"additional_days" validate:"required,min=1"`
	Reason         string `json:"reason"`
}

// ApproveMedicalRequest is the body for POST /api/leaves/{id}/medical/approve.
type ApproveMedicalRequest struct {
	ConvertTo string `json:"convert_to" validate:"required,oneof=EL MEDICAL"`
	Remarks   string `json:"remarks"`
}

// UpdateDatesRequest is the body for PUT /api/leaves/{id}/dates.
type UpdateDatesRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Remarks   string `json:"remarks"`
}

// UpdateSettingsRequest is the body for PUT /api/settings/{year}.
type UpdateSettingsRequest struct {
	CasualLeaveAnnual     int `json:"casual_leave_annual" validate:"min=0"`
	PermissionsAnnual     int `json:"permissions_annual" validate:"min=0"`
	RestrictedLeaveAnnual int `json:"restricted_leave_annual" validate:"min=0"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// LeaveDTO represents a leave record in API responses.
type LeaveDTO struct {
	ID              string   `json:"id"`
	EmployeeID      string   `json:"employee_id"`
	LeaveType       string   `json:"leave_type"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	TotalDays       int      `json:"total_days"`
	ArrivalDate     string   `json:"arrival_date"`
	Remarks         string   `json:"remarks,omitempty"`
	PermissionDates []string `json:"permission_dates,omitempty"`
	PermissionsUsed int      `json:"permissions_used"`
	Status          string   `json:"status"`

	OriginalStartDate string `json:"original_start_date"`
	OriginalEndDate   string `json:"original_end_date"`
	OriginalTotalDays int    `json:"original_total_days"`

	Extensions []ExtensionDTO  `json:"extensions,omitempty"`
	Medical    *MedicalRestDTO `json:"medical,omitempty"`
}

// ExtensionDTO is one CL-extension event.
type ExtensionDTO struct {
	ExtendedDays int    `json:"extended_days"`
	NewEndDate   string `json:"new_end_date"`
	Reason       string `json:"reason,omitempty"`
	At           string `json:"at"`
}

// MedicalRestDTO is the medical overlay in API responses.
type MedicalRestDTO struct {
	RestStartDate   string `json:"rest_start_date"`
	RestEndDate     string `json:"rest_end_date"`
	RestDays        int    `json:"rest_days"`
	Reason          string `json:"reason"`
	CLDaysAvailed   int    `json:"cl_days_availed"`
	CLDaysCancelled int    `json:"cl_days_cancelled"`
	ApprovalStatus  string `json:"approval_status"`
	ConvertedTo     string `json:"converted_to,omitempty"`
	ApprovalRemarks string `json:"approval_remarks,omitempty"`
}

// CategoryBalanceDTO is the remaining/used view of one category.
type CategoryBalanceDTO struct {
	Total     string `json:"total"`
	Used      string `json:"used"`
	Remaining string `json:"remaining"`
}

// BalanceDTO is the full balance view for one employee-year.
type BalanceDTO struct {
	EmployeeID      string             `json:"employee_id"`
	Year            int                `json:"year"`
	CasualLeave     CategoryBalanceDTO `json:"casual_leave"`
	Permissions     CategoryBalanceDTO `json:"permissions"`
	RestrictedLeave CategoryBalanceDTO `json:"restricted_leave"`
	EarnedLeave     struct {
		Used string `json:"used"`
	} `json:"earned_leave"`
}

// EmployeeDTO is directory data for display enrichment.
type EmployeeDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank string `json:"rank,omitempty"`
	Unit string `json:"unit,omitempty"`
}

// LeaveViewDTO is a projection row: a record plus its employee.
type LeaveViewDTO struct {
	Leave    LeaveDTO     `json:"leave"`
	Employee *EmployeeDTO `json:"employee,omitempty"`
}

// HolidayDTO is one calendar holiday.
type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ErrorResponse is the error payload: the error kind plus its parameters,
// surfaced verbatim so the operator can correct input.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// =============================================================================
// MAPPING
// =============================================================================

func toLeaveDTO(r *leave.LeaveRecord) LeaveDTO {
	dto := LeaveDTO{
		ID:                string(r.ID),
		EmployeeID:        string(r.EmployeeID),
		LeaveType:         string(r.Type),
		StartDate:         r.StartDate.String(),
		EndDate:           r.EndDate.String(),
		TotalDays:         r.TotalDays,
		ArrivalDate:       r.ArrivalDate().String(),
		Remarks:           r.Remarks,
		PermissionsUsed:   r.PermissionsUsed(),
		Status:            string(r.Status),
		OriginalStartDate: r.OriginalStartDate.String(),
		OriginalEndDate:   r.OriginalEndDate.String(),
		OriginalTotalDays: r.OriginalTotalDays,
	}
	for _, d := range r.PermissionDates {
		dto.PermissionDates = append(dto.PermissionDates, d.String())
	}
	for _, ext := range r.Extensions {
		dto.Extensions = append(dto.Extensions, ExtensionDTO{
			ExtendedDays: ext.ExtendedDays,
			NewEndDate:   ext.NewEndDate.String(),
			Reason:       ext.Reason,
			At:           ext.At.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	if m := r.Medical; m != nil {
		dto.Medical = &MedicalRestDTO{
			RestStartDate:   m.RestStartDate.String(),
			RestEndDate:     m.RestEndDate.String(),
			RestDays:        m.RestDays,
			Reason:          m.Reason,
			CLDaysAvailed:   m.CLDaysAvailed,
			CLDaysCancelled: m.CLDaysCancelled,
			ApprovalStatus:  string(m.Approval),
			ConvertedTo:     string(m.ConvertedTo),
			ApprovalRemarks: m.ApprovalRemarks,
		}
	}
	return dto
}

func toBalanceDTO(b *leave.EmployeeBalance) BalanceDTO {
	dto := BalanceDTO{
		EmployeeID:      string(b.EmployeeID),
		Year:            b.Year,
		CasualLeave:     toCategoryDTO(b.CasualLeave),
		Permissions:     toCategoryDTO(b.Permissions),
		RestrictedLeave: toCategoryDTO(b.RestrictedLeave),
	}
	dto.EarnedLeave.Used = b.EarnedLeave.Used.String()
	return dto
}

func toCategoryDTO(c leave.CategoryBalance) CategoryBalanceDTO {
	return CategoryBalanceDTO{
		Total:     c.Total.String(),
		Used:      c.Used.String(),
		Remaining: c.Remaining.String(),
	}
}

func toEmployeeDTO(e *leave.Employee) *EmployeeDTO {
	if e == nil {
		return nil
	}
	return &EmployeeDTO{ID: string(e.ID), Name: e.Name, Rank: e.Rank, Unit: e.Unit}
}

func toViewDTOs(views []leave.LeaveView) []LeaveViewDTO {
	dtos := make([]LeaveViewDTO, len(views))
	for i, v := range views {
		dtos[i] = LeaveViewDTO{Leave: toLeaveDTO(v.Record), Employee: toEmployeeDTO(v.Employee)}
	}
	return dtos
}

func toHolidayDTOs(holidays []calendar.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, len(holidays))
	for i, h := range holidays {
		dtos[i] = HolidayDTO{ID: h.ID, Date: h.Date.String(), Name: h.Name, Kind: string(h.Kind)}
	}
	return dtos
}
