package domain

import "time"

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierBasic   SubscriptionTier = "basic"
	TierPremium SubscriptionTier = "premium"
)

type User struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	FullName         string           `json:"full_name"`
	CPF              string           `json:"cpf,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	CRM              string           `json:"crm,omitempty"`
	Specialty        string           `json:"specialty,omitempty"`
	City             string           `json:"city,omitempty"`
	State            string           `json:"state,omitempty"`
	GraduationYear   int              `json:"graduation_year,omitempty"`
	PhotoURL         string           `json:"photo_url,omitempty"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier,omitempty"`
	TotalScore       float64          `json:"total_score,omitempty"`
	IsActive         bool             `json:"is_active"`
	IsVerified       bool             `json:"is_verified"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ProfileUpdate is a sparse patch: zero-valued fields are not sent.
type ProfileUpdate struct {
	FullName       string `json:"full_name,omitempty"`
	CPF            string `json:"cpf,omitempty"`
	Phone          string `json:"phone,omitempty"`
	CRM            string `json:"crm,omitempty"`
	Specialty      string `json:"specialty,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty"`
}

func (u ProfileUpdate) Empty() bool {
	return u == ProfileUpdate{}
}

// IdentificationCheck is the server-computed profile completeness report.
type IdentificationCheck struct {
	CompletionPercentage float64  `json:"completion_percentage"`
	MissingRequired      []string `json:"missing_required"`
	MissingOptional      []string `json:"missing_optional"`
	IsComplete           bool     `json:"is_complete"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	CRMNumber string `json:"crm_number,omitempty"`
	CRMState  string `json:"crm_state,omitempty"`
}

// AuthGrant is the result of a credential exchange.
type AuthGrant struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
