// Package resources serves sample protected collections. The data is fixed
// in memory; the point of these endpoints is exercising permission checks,
// not storage.
package resources

import "time"

// Document is a sample protected resource.
type Document struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a sample protected resource.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
}

// Report is a sample protected resource.
type Report struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	GeneratedBy string    `json:"generated_by"`
	GeneratedAt time.Time `json:"generated_at"`
}

var sampleDocuments = []Document{
	{ID: 1, Title: "System Architecture Overview", Content: "This document describes the high-level architecture...", Author: "Alice Johnson", CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	{ID: 2, Title: "API Documentation", Content: "Complete API reference for all endpoints...", Author: "Bob Smith", CreatedAt: time.Date(2024, 2, 20, 14, 15, 0, 0, time.UTC)},
	{ID: 3, Title: "Security Guidelines", Content: "Best practices for secure development...", Author: "Carol White", CreatedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)},
}

var sampleProjects = []Project{
	{ID: 1, Name: "Authentication System", Description: "Custom auth backend with RBAC", Status: "active", Owner: "Alice Johnson", CreatedAt: time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)},
	{ID: 2, Name: "Data Analytics Platform", Description: "Real-time analytics and reporting", Status: "active", Owner: "Bob Smith", CreatedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
	{ID: 3, Name: "Mobile App", Description: "Cross-platform mobile application", Status: "planning", Owner: "Carol White", CreatedAt: time.Date(2024, 3, 15, 11, 30, 0, 0, time.UTC)},
}

var sampleReports = []Report{
	{ID: 1, Title: "Monthly User Activity Report", Summary: "User engagement metrics for March 2024", GeneratedBy: "System", GeneratedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	{ID: 2, Title: "Security Audit Report", Summary: "Quarterly security assessment results", GeneratedBy: "Security Team", GeneratedAt: time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)},
	{ID: 3, Title: "Performance Metrics", Summary: "System performance analysis for Q1 2024", GeneratedBy: "DevOps Team", GeneratedAt: time.Date(2024, 4, 5, 12, 0, 0, 0, time.UTC)},
}
