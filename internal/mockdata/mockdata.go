// Package mockdata holds placeholder festival listings served when no live
// store is configured.
package mockdata

import "github.com/festifind/festifind/internal/model"

var festivals = []model.FestivalWithPreferences{
	{
		Festival: model.Festival{
			ID:        "1",
			Name:      "Roskilde Festival",
			StartDate: "2025-06-28",
			EndDate:   "2025-07-05",
			Location:  model.Location{City: "Roskilde", Country: "Denmark"},
			Source:    model.Source{Name: "Roskilde Festival", URL: "https://www.roskilde-festival.dk"},
		},
	},
	{
		Festival: model.Festival{
			ID:        "2",
			Name:      "Primavera Sound",
			StartDate: "2025-06-04",
			EndDate:   "2025-06-08",
			Location:  model.Location{City: "Barcelona", Country: "Spain"},
			Source:    model.Source{Name: "Primavera Sound", URL: "https://www.primaverasound.com"},
		},
		IsFavorite: true,
		Notes:      "Check the late-night line-up",
	},
	{
		Festival: model.Festival{
			ID:        "3",
			Name:      "Glastonbury Festival",
			StartDate: "2025-06-25",
			EndDate:   "2025-06-29",
			Location:  model.Location{City: "Pilton", Country: "United Kingdom"},
			Source:    model.Source{Name: "Glastonbury Festivals", URL: "https://www.glastonburyfestivals.co.uk"},
		},
	},
	{
		Festival: model.Festival{
			ID:        "4",
			Name:      "Sziget Festival",
			StartDate: "2025-08-06",
			EndDate:   "2025-08-11",
			Location:  model.Location{City: "Budapest", Country: "Hungary"},
			Source:    model.Source{Name: "Sziget", URL: "https://szigetfestival.com"},
		},
		IsArchived: true,
	},
	{
		Festival: model.Festival{
			ID:        "5",
			Name:      "Flow Festival",
			StartDate: "2025-08-08",
			EndDate:   "2025-08-10",
			Location:  model.Location{City: "Helsinki", Country: "Finland"},
			Source:    model.Source{Name: "Flow Festival", URL: "https://www.flowfestival.com"},
		},
	},
}

// Festivals returns a copy of the fixture, in fixture order.
func Festivals() []model.FestivalWithPreferences {
	out := make([]model.FestivalWithPreferences, len(festivals))
	copy(out, festivals)
	return out
}

// Filter returns the fixture rows matching f. The result is never nil.
func Filter(f model.Filter) []model.FestivalWithPreferences {
	out := []model.FestivalWithPreferences{}
	for _, fest := range festivals {
		if f.Matches(fest) {
			out = append(out, fest)
		}
	}
	return out
}
