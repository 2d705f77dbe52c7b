package converter

import (
	"sort"
	"time"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/pkg/apptime"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// AppointmentToResponse converts an Appointment and derives its time-window
// flags relative to now. Rejected appointments are never joinable.
func AppointmentToResponse(appointment *entity.Appointment, now time.Time) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:          appointment.ID,
		PatientID:   appointment.PatientID,
		PatientName: appointment.Patient.FullName,
		DoctorID:    appointment.DoctorID,
		Date:        appointment.Date,
		Time:        appointment.Time,
		Reason:      appointment.Reason,
		DoctorType:  appointment.DoctorType,
		Status:      string(appointment.Status),
		DoctorNote:  appointment.DoctorNote,
		RoomName:    appointment.RoomName,
		HasRoom:     appointment.HasRoom(),
		ApprovedAt:  appointment.ApprovedAt,
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}
	if appointment.Doctor != nil {
		response.DoctorName = appointment.Doctor.FullName
	}

	// Unparseable stored values leave every flag false.
	joinable, _ := apptime.IsJoinable(appointment.Date, appointment.Time, now)
	past, _ := apptime.IsPast(appointment.Date, appointment.Time, now)
	upcoming, _ := apptime.IsUpcoming(appointment.Date, appointment.Time, now)
	response.Joinable = joinable && appointment.IsApproved()
	response.Past = past
	response.Upcoming = upcoming

	return response
}

func AppointmentsToResponses(appointments []entity.Appointment, now time.Time) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i], now)
	}
	return responses
}

// AppointmentsToPatientRoster collapses appointments into one entry per
// patient, most recently scheduled first. LastAppointment is "date time".
func AppointmentsToPatientRoster(appointments []entity.Appointment) []dto.DoctorPatientResponse {
	byPatient := lo.GroupBy(appointments, func(a entity.Appointment) uuid.UUID { return a.PatientID })

	roster := lo.MapToSlice(byPatient, func(patientID uuid.UUID, appts []entity.Appointment) dto.DoctorPatientResponse {
		entry := dto.DoctorPatientResponse{
			PatientID:         patientID,
			FullName:          appts[0].Patient.FullName,
			Email:             appts[0].Patient.Email,
			TotalAppointments: len(appts),
		}
		for _, a := range appts {
			if a.Status == entity.AppointmentStatusPending {
				entry.PendingRequests++
			}
			// Zero-padded layouts sort lexically in time order.
			if at := a.Date + " " + a.Time; at > entry.LastAppointment {
				entry.LastAppointment = at
			}
		}
		return entry
	})

	sort.Slice(roster, func(i, j int) bool {
		if roster[i].LastAppointment != roster[j].LastAppointment {
			return roster[i].LastAppointment > roster[j].LastAppointment
		}
		return roster[i].PatientID.String() < roster[j].PatientID.String()
	})
	return roster
}
