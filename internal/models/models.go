package models

import "time"

// Application status values stored in users.status.
const (
	AppStatusUnset    = 0
	AppStatusPending  = 1
	AppStatusApproved = 2
	AppStatusDenied   = 3
)

// Session code purposes. A code issued for one purpose is never accepted
// for another.
const (
	PurposeEmailVerification = "email_verification"
	PurposeForgotPassword    = "forgot_password"
)

type User struct {
	ID            int64
	Name          string
	Email         string
	EmailVerified bool
	PassHash      []byte
	Admin         int
	Helper        int
	Status        int
	RegisteredAt  int64
	LastLogin     int64
	RegisterIP    string
	LoginIP       string
	UCPLoginIP    string
}

// SessionCode is a single-use random code bound to a user and a purpose.
// A code is valid only while its row exists.
type SessionCode struct {
	ID        int64
	UserID    int64
	Code      string
	Purpose   string
	CreatedAt time.Time
}

type Character struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Name        string  `json:"name"`
	Gender      int     `json:"gender"`
	BirthDay    int     `json:"birth_day"`
	BirthMonth  int     `json:"birth_month"`
	BirthYear   int     `json:"birth_year"`
	SkinID      int     `json:"skin_id"`
	Level       int     `json:"level"`
	Exp         int     `json:"exp"`
	Money       int64   `json:"money"`
	Bank        int64   `json:"bank"`
	PlayHour    int     `json:"play_hour"`
	JobType     int     `json:"job_type"`
	FactionID   int64   `json:"faction_id"`
	FactionRank int     `json:"faction_rank"`
	Health      float64 `json:"health"`
	Armour      float64 `json:"armour"`
	LastLogin   int64   `json:"lastlogin"`
}

type News struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Content       string `json:"content"`
	Image         string `json:"image"`
	CreatedBy     int64  `json:"created_by"`
	UpdatedBy     int64  `json:"updated_by"`
	CreatedByName string `json:"created_by_name"`
	UpdatedByName string `json:"updated_by_name"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

type Ban struct {
	ID               int64  `json:"id"`
	Account          string `json:"account"`
	Issuer           string `json:"issuer"`
	Reason           string `json:"reason"`
	Timestamp        int64  `json:"timestamp"`
	TimestampExpired int64  `json:"timestamp_expired"`
}

type Quiz struct {
	ID        int64  `json:"id"`
	TypeID    int64  `json:"type_id"`
	Title     string `json:"title"`
	Question  string `json:"question"`
	Image     string `json:"image"`
	CreatedBy int64  `json:"created_by"`
	UpdatedBy int64  `json:"updated_by"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type QuizType struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedBy int64  `json:"created_by"`
	UpdatedBy int64  `json:"updated_by"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type QuizAnswer struct {
	ID            int64  `json:"id"`
	QuizID        int64  `json:"quiz_id"`
	Answer        string `json:"answer"`
	CorrectAnswer bool   `json:"correct_answer"`
	CreatedBy     int64  `json:"created_by"`
	UpdatedBy     int64  `json:"updated_by"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// UserApp is a whitelist application submitted from the quiz flow.
type UserApp struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	QuizID    int64  `json:"quiz_id"`
	AdminID   int64  `json:"admin_id"`
	Status    int    `json:"status"`
	Score     int    `json:"score"`
	Answer    string `json:"answer"`
	UserName  string `json:"user_name"`
	AdminName string `json:"admin_name"`
	QuizTitle string `json:"quiz_title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type AdminWarn struct {
	ID        int64  `json:"id"`
	CharID    int64  `json:"char_id"`
	Issuer    string `json:"issuer"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

type InventoryItem struct {
	ID     int64  `json:"id"`
	CharID int64  `json:"char_id"`
	Item   string `json:"item"`
	Amount int64  `json:"amount"`
}

type Vehicle struct {
	ID      int64   `json:"id"`
	OwnerID int64   `json:"owner_id"`
	ModelID int     `json:"model_id"`
	Plate   string  `json:"plate"`
	Mileage float64 `json:"mileage"`
}

type Property struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
}

// Message is the payload published to the mail queue. The mail sender
// service owns templating and delivery.
type Message struct {
	Email   string            `json:"to"`
	Subject string            `json:"subject"`
	Link    string            `json:"link,omitempty"`
	Purpose string            `json:"purpose"`
	Meta    map[string]string `json:"meta,omitempty"`
}
