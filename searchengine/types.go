package searchengine

import (
	"time"

	"github.com/bileto/bileto/searchengine/query"
)

// Request describes one search. Scope is the access scope of the actor and
// is always applied; Query is the optional user query.
type Request struct {
	ActorID int64
	Scope   *query.Query
	Query   *query.Query
	Sort    string
	Page    int
	PerPage int
}

const (
	DefaultPerPage = 25
	MaxPerPage     = 100
)

func (r Request) pagination() (page, perPage int) {
	page, perPage = r.Page, r.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Page is one page of results.
type Page[T any] struct {
	Items   []T    `json:"items"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Total   int    `json:"total"`
	Sort    string `json:"sort"`
}

// Pages returns the number of pages, at least 1.
func (p *Page[T]) Pages() int {
	if p.Total <= p.PerPage {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// HasNext reports whether a page follows this one.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.Pages()
}

type Ticket struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Urgency        string    `json:"urgency"`
	Impact         string    `json:"impact"`
	Priority       string    `json:"priority"`
	OrganizationID int64     `json:"organization_id"`
	RequesterID    *int64    `json:"requester_id"`
	AssigneeID     *int64    `json:"assignee_id"`
	TeamID         *int64    `json:"team_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Contract struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	OrganizationID int64     `json:"organization_id"`
	StartAt        time.Time `json:"start_at"`
	EndAt          time.Time `json:"end_at"`
}
