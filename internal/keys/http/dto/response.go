// Package dto provides data transfer objects for the signing key endpoints.
package dto

import (
	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

// KeyIDResponse carries the id of a created or deleted key.
type KeyIDResponse struct {
	ID string `json:"id"`
}

// KeyResponse is one entry of the key listing.
type KeyResponse struct {
	ID        string `json:"id"`
	Algorithm string `json:"algorithm"`
	IssueDate string `json:"issue_date"`
}

// ListKeysResponse represents the key listing in API responses.
type ListKeysResponse struct {
	Data []KeyResponse `json:"data"`
}

// MapSummariesToListResponse converts key summaries to a list response.
func MapSummariesToListResponse(summaries []keysDomain.KeySummary) ListKeysResponse {
	data := make([]KeyResponse, 0, len(summaries))
	for _, summary := range summaries {
		data = append(data, KeyResponse{
			ID:        summary.ID,
			Algorithm: summary.Algorithm,
			IssueDate: summary.IssueDate,
		})
	}
	return ListKeysResponse{Data: data}
}
