package models

import "time"

// PartnerForm is the private application form a partner submits. Contact and
// banking details stay here; the curated PublicProfile is what listings show
// when present.
type PartnerForm struct {
	Name              string   `json:"name" yaml:"name"`
	Age               string   `json:"age" yaml:"age"`
	Contact           string   `json:"contact" yaml:"contact"`
	KakaoID           string   `json:"kakao_id,omitempty" yaml:"kakao_id"`
	Region            string   `json:"region" yaml:"region"`
	RRN               string   `json:"rrn,omitempty" yaml:"rrn"`
	AccountNumber     string   `json:"account_number,omitempty" yaml:"account_number"`
	Intro             string   `json:"intro,omitempty" yaml:"intro"`
	FacePhotoURLs     []string `json:"face_photo_urls,omitempty" yaml:"face_photo_urls"`
	FullBodyPhotoURLs []string `json:"full_body_photo_urls,omitempty" yaml:"full_body_photo_urls"`
	AvailableDays     []string `json:"available_days" yaml:"available_days"`
	AvailableDates    []string `json:"available_dates,omitempty" yaml:"available_dates"`
	Latitude          float64  `json:"latitude,omitempty" yaml:"latitude"`
	Longitude         float64  `json:"longitude,omitempty" yaml:"longitude"`
	AvailableForBooking bool   `json:"available_for_booking" yaml:"available_for_booking"`
	Grade             string   `json:"grade" yaml:"grade"`
}

// PublicProfile is the admin-curated listing card shown instead of raw form
// fields on recommended/public pages.
type PublicProfile struct {
	Name     string `json:"name" yaml:"name"`
	Age      string `json:"age" yaml:"age"`
	Intro    string `json:"intro" yaml:"intro"`
	PhotoURL string `json:"photo_url,omitempty" yaml:"photo_url"`
	Region   string `json:"region" yaml:"region"`
}

type PartnerApplication struct {
	ID            string         `json:"id" yaml:"id"`
	Applicant     User           `json:"applicant" yaml:"applicant"`
	Form          PartnerForm    `json:"form" yaml:"form"`
	IsRecommended bool           `json:"is_recommended,omitempty" yaml:"is_recommended"`
	PublicProfile *PublicProfile `json:"public_profile,omitempty" yaml:"public_profile"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" yaml:"updated_at"`
}

// DisplayName prefers the curated public profile over the raw form.
func (a *PartnerApplication) DisplayName() string {
	if a.PublicProfile != nil && a.PublicProfile.Name != "" {
		return a.PublicProfile.Name
	}
	return a.Form.Name
}

// ProfilePhotoURL prefers the curated photo, then the first face photo.
func (a *PartnerApplication) ProfilePhotoURL() string {
	if a.PublicProfile != nil && a.PublicProfile.PhotoURL != "" {
		return a.PublicProfile.PhotoURL
	}
	if len(a.Form.FacePhotoURLs) > 0 {
		return a.Form.FacePhotoURLs[0]
	}
	return ""
}
