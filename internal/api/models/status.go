package models

// StatusUpdateCreateRequest is the body of POST /status-updates.
type StatusUpdateCreateRequest struct {
	ServiceID int64  `json:"serviceId"`
	Status    string `json:"status"`
	Comments  string `json:"comments,omitempty"`
	Plan      string `json:"plan,omitempty"`
}

// StatusUpdate represents one status observation.
type StatusUpdate struct {
	ID            int64     `json:"id"`
	ServiceID     int64     `json:"serviceId"`
	ServiceName   string    `json:"serviceName"`
	Status        string    `json:"status"`
	StatusDisplay string    `json:"statusDisplay"`
	Comments      string    `json:"comments"`
	Plan          string    `json:"plan"`
	CreatedBy     *string   `json:"createdBy"`
	CreatedAt     Timestamp `json:"createdAt"`
}

// Service represents a monitored service with its derived current status.
// CurrentStatus is null for a service with no recorded history.
type Service struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Order         int           `json:"order"`
	IsActive      bool          `json:"isActive"`
	CreatedAt     Timestamp     `json:"createdAt"`
	CurrentStatus *StatusUpdate `json:"currentStatus"`
}

// Overall is the public banner view: the worst current status across the
// active services.
type Overall struct {
	Status        string    `json:"status"`
	StatusDisplay string    `json:"statusDisplay"`
	Time          Timestamp `json:"time"`
	Services      []Service `json:"services"`
}

// ServiceCreateRequest is the body of POST /admin/services.
type ServiceCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// ServiceUpdateRequest is the body of PUT /admin/services/{serviceId}.
// Absent fields are left unchanged.
type ServiceUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Order       *int    `json:"order,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// APIKeyCreateRequest is the body of POST /admin/api-keys.
type APIKeyCreateRequest struct {
	Label string `json:"label"`
}

// APIKey represents API key metadata. The secret token is only present in
// the response to the create call.
type APIKey struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Token      string     `json:"token,omitempty"`
	Revoked    bool       `json:"revoked"`
	CreatedAt  Timestamp  `json:"createdAt"`
	LastUsedAt *Timestamp `json:"lastUsedAt"`
}
