package model

import "github.com/google/uuid"

// Company is a target company previously passed on by the investor.
type Company struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Domain string   `json:"domain,omitempty"`
	Sector string   `json:"sector,omitempty"`
	Stage  string   `json:"stage,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// NewCompany creates a Company with a fresh ID.
func NewCompany(name string) Company {
	return Company{ID: uuid.NewString(), Name: name}
}
