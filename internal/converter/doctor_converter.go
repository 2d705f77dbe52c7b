package converter

import (
	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
)

func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorProfileResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorProfileResponse{
		UserID:          profile.UserID,
		FullName:        profile.User.FullName,
		Email:           profile.User.Email,
		Specialty:       profile.Specialty,
		LicenseNumber:   profile.LicenseNumber,
		ExperienceYears: profile.ExperienceYears,
		Institution:     profile.Institution,
		Bio:             profile.Bio,
		Status:          string(profile.Status),
		CreatedAt:       profile.CreatedAt,
	}
}
