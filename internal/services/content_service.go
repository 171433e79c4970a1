package services

import (
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/kvfile"
)

// ContentService serves the store profile and help texts.
type ContentService struct {
	profile *kvfile.File
	help    *kvfile.File
}

func NewContentService(profile, help *kvfile.File) *ContentService {
	return &ContentService{profile: profile, help: help}
}

// About returns the profile entries in file order.
func (s *ContentService) About() ([]kvfile.Entry, error) {
	return s.profile.Entries()
}

// Help returns the help entries in file order.
func (s *ContentService) Help() ([]kvfile.Entry, error) {
	return s.help.Entries()
}

// UpdateProfile overwrites one existing profile field.
func (s *ContentService) UpdateProfile(field, value string) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return apperr.New(apperr.Validation, "content.update_profile", "field is required")
	}
	if strings.ContainsAny(value, "\r\n") {
		return apperr.New(apperr.Validation, "content.update_profile", "value must be a single line")
	}
	return s.profile.Set(field, strings.TrimSpace(value))
}
