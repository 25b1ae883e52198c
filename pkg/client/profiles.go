package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/veterimap/veterimap/pkg/domain"
)

// ProfilePage is one page of the marketplace listing.
type ProfilePage struct {
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	Limit    int                     `json:"limit"`
	Profiles []domain.ProfileSummary `json:"profiles"`
}

// MapQuery filters the professional search.
type MapQuery struct {
	City       string
	EntityType string
	Specialty  string
}

// GetProfessionalProfile returns the caller's own professional profile.
func (c *Client) GetProfessionalProfile(ctx context.Context) (*domain.ProfessionalEntity, error) {
	var p domain.ProfessionalEntity
	if err := c.get(ctx, "/users/me/professional-profile", &p); err != nil {
		return nil, fmt.Errorf("client.GetProfessionalProfile: %w", err)
	}
	return &p, nil
}

// SaveProfessionalProfile creates or replaces the caller's professional profile.
func (c *Client) SaveProfessionalProfile(ctx context.Context, p domain.ProfessionalEntity) error {
	if err := c.post(ctx, "/users/me/professional-profile", p, nil); err != nil {
		return fmt.Errorf("client.SaveProfessionalProfile: %w", err)
	}
	return nil
}

// ListProfiles fetches a page of the marketplace with optional filters.
func (c *Client) ListProfiles(ctx context.Context, name, city, tag string, page int) (*ProfilePage, error) {
	params := url.Values{}
	if name != "" {
		params.Set("name", name)
	}
	if city != "" {
		params.Set("city", city)
	}
	if tag != "" {
		params.Set("tag", tag)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var p ProfilePage
	if err := c.get(ctx, "/profiles?"+params.Encode(), &p); err != nil {
		return nil, fmt.Errorf("client.ListProfiles: %w", err)
	}
	return &p, nil
}

// SearchMap returns the professionals matching q.
func (c *Client) SearchMap(ctx context.Context, q MapQuery) ([]domain.ProfileSummary, error) {
	params := url.Values{}
	params.Set("city", q.City)
	if q.EntityType != "" {
		params.Set("type", q.EntityType)
	}
	if q.EntityType == domain.EntityIndividual && q.Specialty != "" {
		params.Set("specialty", q.Specialty)
	}

	var resp struct {
		Results []domain.ProfileSummary `json:"results"`
	}
	if err := c.get(ctx, "/profiles/map?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("client.SearchMap: %w", err)
	}
	return resp.Results, nil
}

// GetProfileDetail fetches a professional's public profile by ID.
func (c *Client) GetProfileDetail(ctx context.Context, id string) (*domain.ProfileDetail, error) {
	var d domain.ProfileDetail
	if err := c.get(ctx, "/profiles/detail?id="+url.QueryEscape(id), &d); err != nil {
		return nil, fmt.Errorf("client.GetProfileDetail: %w", err)
	}
	return &d, nil
}
