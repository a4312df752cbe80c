package pricing

import (
	"slices"
	"strconv"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// SelectionRequest is the flat wire shape of a ServiceSelection.  Kind picks
// the variant; discriminators that do not belong to it are ignored.
type SelectionRequest struct {
	Kind            string               `json:"kind"`
	ApplicationType string               `json:"application_type,omitempty"`
	NiceClasses     []int                `json:"nice_classes,omitempty"`
	PriorUse        domain.PriorUse      `json:"prior_use"`
	GoodsServices   domain.GoodsServices `json:"goods_services"`
	Option1         bool                 `json:"option1,omitempty"`
	SearchType      string               `json:"search_type,omitempty"`
	Turnaround      string               `json:"turnaround,omitempty"`
	DraftingType    string               `json:"drafting_type,omitempty"`
	FilingType      string               `json:"filing_type,omitempty"`
	FerKey          string               `json:"fer_key,omitempty"`
}

func invalidSelection(field, value string) error {
	return errors.New(errors.ErrCodeSelectionInvalid, "invalid "+field).WithDetail(value)
}

// oneOf accepts empty values; an unset discriminator simply triggers nothing.
func oneOf[T ~string](v string, allowed []T) bool {
	return v == "" || slices.Contains(allowed, T(v))
}

// Selection validates r and builds the typed selection.
func (r SelectionRequest) Selection() (domain.ServiceSelection, error) {
	kind, err := domain.ParseServiceKind(r.Kind)
	if err != nil {
		return nil, err
	}

	appType := domain.ApplicationIndividual
	if r.ApplicationType != "" {
		if appType, err = domain.ParseApplicationType(r.ApplicationType); err != nil {
			return nil, invalidSelection("application_type", r.ApplicationType)
		}
	}
	for _, c := range r.NiceClasses {
		if c < 1 || c > 45 {
			return nil, errors.New(errors.ErrCodeSelectionInvalid, "nice class out of range [1, 45]").WithDetail(strconv.Itoa(c))
		}
	}
	common := domain.Common{ApplicationType: appType, NiceClasses: r.NiceClasses, PriorUse: r.PriorUse}

	switch kind {
	case domain.ServicePatentabilitySearch:
		if !oneOf(r.SearchType, domain.SearchTypes) {
			return nil, invalidSelection("search_type", r.SearchType)
		}
		if !oneOf(r.Turnaround, domain.Turnarounds) {
			return nil, invalidSelection("turnaround", r.Turnaround)
		}
		return domain.PatentabilitySearch{
			Common:     common,
			SearchType: domain.SearchType(r.SearchType),
			Turnaround: domain.Turnaround(r.Turnaround),
		}, nil

	case domain.ServiceDrafting:
		if !oneOf(r.DraftingType, domain.DraftingTypes) {
			return nil, invalidSelection("drafting_type", r.DraftingType)
		}
		if !oneOf(r.Turnaround, domain.Turnarounds) {
			return nil, invalidSelection("turnaround", r.Turnaround)
		}
		return domain.Drafting{
			Common:       common,
			DraftingType: domain.DraftingType(r.DraftingType),
			Turnaround:   domain.Turnaround(r.Turnaround),
		}, nil

	case domain.ServiceFiling:
		if !oneOf(r.FilingType, domain.FilingTypes) {
			return nil, invalidSelection("filing_type", r.FilingType)
		}
		return domain.Filing{
			Common:     common,
			FilingType: domain.FilingType(r.FilingType),
			SearchType: r.SearchType,
		}, nil

	case domain.ServiceFER:
		if !oneOf(r.FerKey, domain.FerKeys) {
			return nil, invalidSelection("fer_key", r.FerKey)
		}
		return domain.FER{Common: common, FerKey: domain.FerKey(r.FerKey)}, nil
	}

	return domain.Trademark{
		Common:        common,
		GoodsServices: r.GoodsServices,
		SearchType:    r.SearchType,
		Option1:       r.Option1,
	}, nil
}

//Personal.AI order the ending
