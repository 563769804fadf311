package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	"hpicpulse/internal/config"
	"hpicpulse/internal/dataset"
	"hpicpulse/pkg/contracts/domain"
)

// MembershipTier describes one membership level and its pricing.
type MembershipTier struct {
	Name       string `json:"name"`
	Individual string `json:"individual"`
	Family     string `json:"family"`
	Note       string `json:"note,omitempty"`
}

// DataSource describes one of the two source systems behind the
// hpic_members / pmp_members split.
type DataSource struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// OrgInfo is the /api/info payload: who the organization is, how the data
// is produced, and how fresh the loaded snapshots are.
type OrgInfo struct {
	Organization struct {
		Name    string `json:"name"`
		About   string `json:"about"`
		Website string `json:"website"`
	} `json:"organization"`
	MembershipTiers []MembershipTier     `json:"membership_tiers"`
	DataSources     []DataSource         `json:"data_sources"`
	DataPrivacy     []string             `json:"data_privacy"`
	Provenance      string               `json:"provenance"`
	Datasets        []domain.DatasetInfo `json:"datasets"`
	Cache           dataset.CacheStats   `json:"cache"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// Static page copy; the datasets section is rebuilt per request.
var (
	organizationAbout = "Highland Park Improvement Club (HPIC) is a 100+ year old " +
		"neighborhood nonprofit serving the Highland Park and Riverview communities."

	membershipTiers = []MembershipTier{
		{Name: "Classic", Individual: "$20", Family: "$40", Note: "Standard membership"},
		{Name: "Champion", Individual: "$100", Family: "$200", Note: "Premium supporter level"},
	}

	dataSources = []DataSource{
		{Key: "hpic", Name: "Little Green Light CRM", Role: "current membership system"},
		{Key: "pmp", Name: "PMP Legacy System", Role: "historical data from the previous platform"},
	}

	dataPrivacy = []string{
		"This dashboard displays only aggregated monthly totals",
		"No individual member information is shown or stored",
		"All data is anonymized for public transparency",
	}

	dataProvenance = "Aggregated snapshots are published monthly as CSV files; " +
		"the dashboard reads them as-is and computes no per-member data."
)

// InfoService assembles the about/organization payload.
type InfoService struct {
	store  DatasetStore
	logger *slog.Logger
}

// NewInfoService creates a new info service
func NewInfoService(store DatasetStore, logger *slog.Logger) *InfoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InfoService{store: store, logger: logger}
}

// OrganizationInfo returns the full about payload. Both snapshots are
// loaded (through the cache) so the freshness section always describes the
// files actually being served.
func (s *InfoService) OrganizationInfo(ctx context.Context) (*OrgInfo, error) {
	if _, err := s.store.MembershipTimeline(ctx); err != nil {
		return nil, err
	}
	if _, err := s.store.RevenueAnalysis(ctx); err != nil {
		return nil, err
	}

	info := &OrgInfo{
		MembershipTiers: membershipTiers,
		DataSources:     dataSources,
		DataPrivacy:     dataPrivacy,
		Provenance:      dataProvenance,
		Cache:           s.store.Stats(),
		GeneratedAt:     time.Now().UTC(),
	}
	info.Organization.Name = config.AppVendor
	info.Organization.About = organizationAbout
	info.Organization.Website = config.HPICWebsiteURL
	info.Datasets = s.datasetInfos(info.Cache)

	return info, nil
}

// datasetInfos merges cache statistics with file metadata per dataset.
func (s *InfoService) datasetInfos(stats dataset.CacheStats) []domain.DatasetInfo {
	names := []string{config.DatasetMembership, config.DatasetRevenue}

	infos := make([]domain.DatasetInfo, 0, len(names))
	for _, name := range names {
		ds, ok := stats.Datasets[name]
		if !ok {
			continue
		}

		info := domain.DatasetInfo{
			Name:      name,
			Path:      ds.Source,
			Rows:      ds.Rows,
			CachedAt:  ds.LoadedAt,
			ExpiresAt: ds.ExpiresAt,
		}
		if fi, err := os.Stat(ds.Source); err == nil {
			info.SizeBytes = fi.Size()
			info.ModifiedAt = fi.ModTime()
		} else {
			s.logger.Warn("dataset file stat failed",
				slog.String("dataset", name),
				slog.String("path", ds.Source),
				slog.String("error", err.Error()))
		}

		infos = append(infos, info)
	}

	return infos
}
