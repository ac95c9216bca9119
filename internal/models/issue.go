package models

import (
	"time"
)

type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

// IssueStatuses lists every status in declaration order.
var IssueStatuses = []IssueStatus{IssueStatusOpen, IssueStatusInProgress, IssueStatusClosed}

// Valid reports whether s is one of the declared statuses.
func (s IssueStatus) Valid() bool {
	for _, v := range IssueStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type IssueType string

const (
	IssueTypeGeneral IssueType = "GENERAL"
	IssueTypeBug     IssueType = "BUG"
	IssueTypeSpike   IssueType = "SPIKE"
	IssueTypeTask    IssueType = "TASK"
	IssueTypeSubtask IssueType = "SUBTASK"
)

// IssueTypes lists every issue type in declaration order.
var IssueTypes = []IssueType{IssueTypeGeneral, IssueTypeBug, IssueTypeSpike, IssueTypeTask, IssueTypeSubtask}

// Valid reports whether t is one of the declared issue types.
func (t IssueType) Valid() bool {
	for _, v := range IssueTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Issue struct {
	ID               uint64      `gorm:"primarykey" json:"id"`
	Title            string      `gorm:"type:varchar(255);not null" json:"title"`
	Description      string      `gorm:"size:262144;not null" json:"description"`
	Status           IssueStatus `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	IssueType        IssueType   `gorm:"type:varchar(20);not null;default:'GENERAL';index" json:"issueType"`
	AssignedToUserID *string     `gorm:"type:varchar(36);index" json:"assignedToUserId"`
	ProjectID        *uint64     `gorm:"index" json:"projectId"`
	CreatedAt        time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`

	// Relations
	AssignedToUser *User    `gorm:"foreignKey:AssignedToUserID" json:"assignedToUser,omitempty"`
	Project        *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
