package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/daniacca/hionsim/internal/hion"
)

// CatalogBuilder provides a fluent API for building species catalogs.
// Use it to define the particle species and decay channels of a hadron
// catalog before uploading it to a hionsim server.
type CatalogBuilder struct {
	name    string
	species []*SpeciesBuilder
}

// NewCatalog creates a new catalog builder with the given name.
// The name identifies the catalog and is used for organization purposes.
func NewCatalog(name string) *CatalogBuilder {
	return &CatalogBuilder{
		name:    name,
		species: make([]*SpeciesBuilder, 0),
	}
}

// Species adds a species definition to the catalog.
func (cb *CatalogBuilder) Species(sb *SpeciesBuilder) *CatalogBuilder {
	cb.species = append(cb.species, sb)
	return cb
}

// Build converts the builder to a CatalogConfig that can be used with
// ApplyCatalog or validated locally with hion.BuildSpeciesTableFromConfig.
func (cb *CatalogBuilder) Build() hion.CatalogConfig {
	species := make([]hion.SpeciesConfig, 0, len(cb.species))
	for _, sb := range cb.species {
		species = append(species, sb.Build())
	}
	return hion.CatalogConfig{
		Name:    cb.name,
		Species: species,
	}
}

// SpeciesBuilder provides a fluent API for building one species
// configuration: PDG identity, pole mass, width, quantum numbers and
// decay channels.
type SpeciesBuilder struct {
	cfg hion.SpeciesConfig
}

// NewSpecies creates a new species builder. Mass is in GeV; the species
// defaults to stable with spin degeneracy 1.
func NewSpecies(pdg int, name string, mass float64) *SpeciesBuilder {
	return &SpeciesBuilder{
		cfg: hion.SpeciesConfig{
			PDG:            pdg,
			Name:           name,
			Mass:           mass,
			SpinDegeneracy: 1,
			Stable:         true,
		},
	}
}

// Width sets the total decay width in GeV and marks the species unstable.
func (sb *SpeciesBuilder) Width(width float64) *SpeciesBuilder {
	sb.cfg.Width = width
	sb.cfg.Stable = false
	return sb
}

// SpinDegeneracy sets the spin degeneracy factor (2J+1).
func (sb *SpeciesBuilder) SpinDegeneracy(deg int) *SpeciesBuilder {
	sb.cfg.SpinDegeneracy = deg
	return sb
}

// Charge sets the electric charge.
func (sb *SpeciesBuilder) Charge(charge int) *SpeciesBuilder {
	sb.cfg.Charge = charge
	return sb
}

// BaryonNumber sets the baryon number.
func (sb *SpeciesBuilder) BaryonNumber(b int) *SpeciesBuilder {
	sb.cfg.BaryonNumber = b
	return sb
}

// Strangeness sets the strangeness quantum number.
func (sb *SpeciesBuilder) Strangeness(s int) *SpeciesBuilder {
	sb.cfg.Strangeness = s
	return sb
}

// Isospin sets the isospin and its third component, both doubled so they
// stay integers (e.g. a pion has Isospin(2, 2)).
func (sb *SpeciesBuilder) Isospin(isospin, isospin3 int) *SpeciesBuilder {
	sb.cfg.Isospin = isospin
	sb.cfg.Isospin3 = isospin3
	return sb
}

// Decay adds a decay channel with the given branching ratio and product
// PDG codes, and marks the species unstable.
func (sb *SpeciesBuilder) Decay(branchingRatio float64, products ...int) *SpeciesBuilder {
	sb.cfg.Stable = false
	sb.cfg.DecayModes = append(sb.cfg.DecayModes, hion.DecayModeConfig{
		Products:       products,
		BranchingRatio: branchingRatio,
	})
	return sb
}

// Build converts the builder to a SpeciesConfig.
func (sb *SpeciesBuilder) Build() hion.SpeciesConfig {
	return sb.cfg
}

// Client talks to a hionsim server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied http.Client,
// for custom timeouts or transports.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

// CollideRequest names the particles to resolve and the resolution
// parameters. Zero DT and CellVolume fall back to the server defaults.
type CollideRequest struct {
	ParticleIDs   []string `json:"particle_ids"`
	TimeIncrement float64  `json:"time_increment"`
	DT            float64  `json:"dt,omitempty"`
	CellVolume    float64  `json:"cell_volume,omitempty"`
}

// CollideResult reports whether the collision was performed and, if so,
// the resulting event.
type CollideResult struct {
	Performed bool                 `json:"performed"`
	Reason    string               `json:"reason,omitempty"`
	Event     *hion.CollisionEvent `json:"event,omitempty"`
}

// Health checks the server health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, nil, nil, "healthz")
}

// ApplyCatalog uploads a species catalog built with CatalogBuilder.
func (c *Client) ApplyCatalog(ctx context.Context, catalog *CatalogBuilder) error {
	return c.do(ctx, http.MethodPost, catalog.Build(), nil, "catalog")
}

// CreateSystem creates a new empty particle system on the server.
func (c *Client) CreateSystem(ctx context.Context, systemID string) error {
	body := map[string]string{"id": systemID}
	return c.do(ctx, http.MethodPost, body, nil, "systems")
}

// DeleteSystem removes a particle system.
func (c *Client) DeleteSystem(ctx context.Context, systemID string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "systems", systemID)
}

// ListSystems returns the IDs of all systems on the server.
func (c *Client) ListSystems(ctx context.Context) ([]string, error) {
	var resp map[string][]string
	if err := c.do(ctx, http.MethodGet, nil, &resp, "systems"); err != nil {
		return nil, err
	}
	return resp["systems"], nil
}

// InsertParticle adds a particle to a system. Momentum and position are
// four-vectors as [x0, x1, x2, x3]; the returned snapshot carries the
// server-assigned particle ID.
func (c *Client) InsertParticle(ctx context.Context, systemID string, pdg int, momentum, position [4]float64) (hion.ParticleSnapshot, error) {
	body := map[string]any{
		"pdg":      pdg,
		"momentum": momentum,
		"position": position,
	}
	var snap hion.ParticleSnapshot
	if err := c.do(ctx, http.MethodPost, body, &snap, "systems", systemID, "particles"); err != nil {
		return hion.ParticleSnapshot{}, err
	}
	return snap, nil
}

// ListParticles returns snapshots of all particles in a system.
func (c *Client) ListParticles(ctx context.Context, systemID string) ([]hion.ParticleSnapshot, error) {
	var resp struct {
		Particles []hion.ParticleSnapshot `json:"particles"`
	}
	if err := c.do(ctx, http.MethodGet, nil, &resp, "systems", systemID, "particles"); err != nil {
		return nil, err
	}
	return resp.Particles, nil
}

// Collide resolves one multi-particle action over the named particles.
func (c *Client) Collide(ctx context.Context, systemID string, req CollideRequest) (CollideResult, error) {
	var result CollideResult
	if err := c.do(ctx, http.MethodPost, req, &result, "systems", systemID, "collide"); err != nil {
		return CollideResult{}, err
	}
	return result, nil
}

// SaveSnapshot asks the server to persist a snapshot of the system.
func (c *Client) SaveSnapshot(ctx context.Context, systemID string) error {
	return c.do(ctx, http.MethodPost, nil, nil, "systems", systemID, "snapshot")
}

// RestoreSnapshot replaces the system state with its last saved snapshot.
func (c *Client) RestoreSnapshot(ctx context.Context, systemID string) error {
	return c.do(ctx, http.MethodPost, nil, nil, "systems", systemID, "restore")
}

// do sends one request and decodes the JSON response into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method string, body, out any, pathSegments ...string) error {
	u, err := url.JoinPath(c.baseURL, pathSegments...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
