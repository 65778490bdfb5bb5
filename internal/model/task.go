// Package model defines the core data types shared across the validation pipeline.
package model

import "time"

// Task is one lead-validation task extracted from the CRM. The Description
// field carries the embedded validation report text; the Lead* fields are
// denormalized from the related Lead record. Tasks are read-only once fetched.
type Task struct {
	ID               string    `json:"task_id"`
	WhoID            string    `json:"who_id"`
	WhatID           string    `json:"what_id"`
	Subject          string    `json:"subject"`
	Description      string    `json:"description"`
	LeadSource       string    `json:"lead_source"`
	LeadCompany      string    `json:"lead_company"`
	LeadEmail        string    `json:"lead_email"`
	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
	ExtractedAt      time.Time `json:"extracted_at"`
}

// RunStatus represents the state of an ETL run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunStats holds the summary counters for one ETL run.
type RunStats struct {
	TasksExtracted    int `json:"tasks_extracted"`
	ValidationsParsed int `json:"validations_parsed"`
	HighQualityLeads  int `json:"high_quality_leads"`
	LowQualityLeads   int `json:"low_quality_leads"`
	ParseErrors       int `json:"parse_errors"`
}

// EtlRun is one row in the etl_runs log.
type EtlRun struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Stats       RunStats   `json:"stats"`
	Error       string     `json:"error,omitempty"`
}
