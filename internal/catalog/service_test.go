package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Whey Protein", want: "whey-protein"},
		{name: "punctuation", in: "Peanut Butter (Crunchy) 1kg!", want: "peanut-butter-crunchy-1kg"},
		{name: "leading and trailing noise", in: "  --Plant Protein--  ", want: "plant-protein"},
		{name: "collapses runs", in: "Omega   3 & 6", want: "omega-3-6"},
		{name: "empty", in: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}

func TestCategoryUpdatesRegeneratesSlugOnRename(t *testing.T) {
	name := "  Sports Nutrition & Recovery "
	updates := categoryUpdates(UpdateCategoryInput{Name: &name})

	require.Equal(t, "Sports Nutrition & Recovery", updates["name"])
	require.Equal(t, "sports-nutrition-recovery", updates["slug"])
}

func TestCategoryUpdatesLeavesSlugWithoutRename(t *testing.T) {
	description := "Everything for the recovery window."
	inactive := false
	updates := categoryUpdates(UpdateCategoryInput{Description: &description, IsActive: &inactive})

	require.NotContains(t, updates, "slug")
	require.NotContains(t, updates, "name")
	require.Equal(t, &description, updates["description"])
	require.Equal(t, false, updates["is_active"])
}

func TestCategoryUpdatesEmptyInput(t *testing.T) {
	require.Empty(t, categoryUpdates(UpdateCategoryInput{}))
}

func TestGenerateSKU(t *testing.T) {
	chocolate := "Double Chocolate"

	require.Equal(t, "WHEY-PROTEIN-1KG-DOUBLE-CHOCOLATE-01",
		GenerateSKU("whey-protein", "1kg", &chocolate, 0))
	require.Equal(t, "WHEY-PROTEIN-500G-02",
		GenerateSKU("whey-protein", "500g", nil, 1))

	empty := ""
	require.Equal(t, "OMEGA-3-60-CAPS-01",
		GenerateSKU("omega-3", "60 caps", &empty, 0))
}
