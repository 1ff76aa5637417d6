package service

import (
	"strings"

	"github.com/labellens/backend/internal/types"
)

// IngredientEntry is one knowledge-base record. Entries are immutable and
// shared: lookups by canonical name and by alias return the same record.
type IngredientEntry struct {
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	Rating         types.SafetyRating `json:"rating"`
	Confidence     int                `json:"confidence"`
	Explanation    string             `json:"explanation"`
	HealthConcerns []string           `json:"health_concerns"`
	Alternatives   []string           `json:"alternatives"`
	Sources        []string           `json:"sources"`
}

// KnowledgeBase is a static mapping from lower-cased canonical ingredient
// names (and registered aliases) to safety metadata. It is built once at
// startup and has no mutation API; changing content means rebuilding.
type KnowledgeBase struct {
	entries map[string]*IngredientEntry
}

// NewKnowledgeBase builds the seeded knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	kb := &KnowledgeBase{entries: make(map[string]*IngredientEntry, len(seedEntries)*2)}
	for i := range seedEntries {
		entry := &seedEntries[i]
		kb.entries[strings.ToLower(entry.Name)] = entry
	}
	for alias, canonical := range seedAliases {
		if entry, ok := kb.entries[canonical]; ok {
			kb.entries[strings.ToLower(alias)] = entry
		}
	}
	return kb
}

// Lookup returns the entry for an exact lower-cased name or alias match.
func (kb *KnowledgeBase) Lookup(name string) (*IngredientEntry, bool) {
	entry, ok := kb.entries[strings.ToLower(strings.TrimSpace(name))]
	return entry, ok
}

// Size returns the number of registered keys, aliases included.
func (kb *KnowledgeBase) Size() int {
	return len(kb.entries)
}

// seedAliases maps alternate names to the canonical key they resolve to.
var seedAliases = map[string]string{
	"vitamin c":       "ascorbic acid",
	"e300":            "ascorbic acid",
	"vitamin e":       "tocopherols",
	"mixed tocopherols": "tocopherols",
	"red 40":          "artificial color red 40",
	"allura red":      "artificial color red 40",
	"yellow 5":        "tartrazine",
	"e102":            "tartrazine",
	"e211":            "sodium benzoate",
	"e621":            "monosodium glutamate",
	"msg":             "monosodium glutamate",
	"hfcs":            "high fructose corn syrup",
	"corn sugar":      "high fructose corn syrup",
	"table salt":      "salt",
	"sodium chloride": "salt",
	"e330":            "citric acid",
	"vitamin b3":      "niacin",
	"vitamin b2":      "riboflavin",
	"vitamin b9":      "folic acid",
	"e407":            "carrageenan",
}

var seedEntries = []IngredientEntry{
	// Preservatives
	{
		Name:        "Sodium Benzoate",
		Category:    "preservative",
		Rating:      types.RatingAvoid,
		Confidence:  80,
		Explanation: "Synthetic preservative that can form benzene, a known carcinogen, when combined with vitamin C.",
		HealthConcerns: []string{
			"May form benzene with ascorbic acid",
			"Linked to hyperactivity in children",
		},
		Alternatives: []string{"Rosemary extract", "Vitamin E (tocopherols)"},
		Sources:      []string{"FDA CFR 21 §184.1733", "Lancet 2007 Southampton study"},
	},
	{
		Name:           "Potassium Sorbate",
		Category:       "preservative",
		Rating:         types.RatingCaution,
		Confidence:     70,
		Explanation:    "Common mold inhibitor, generally well tolerated but a skin and eye irritant for sensitive people.",
		HealthConcerns: []string{"Possible skin irritation", "Rare allergic reactions"},
		Alternatives:   []string{"Cultured dextrose", "Fermented vegetables"},
		Sources:        []string{"FDA GRAS database"},
	},
	{
		Name:        "Sodium Nitrite",
		Category:    "preservative",
		Rating:      types.RatingAvoid,
		Confidence:  85,
		Explanation: "Curing agent for processed meats; forms nitrosamines under high heat, classified as probably carcinogenic.",
		HealthConcerns: []string{
			"Nitrosamine formation",
			"Associated with colorectal cancer risk",
		},
		Alternatives: []string{"Celery powder", "Uncured products"},
		Sources:      []string{"IARC Monograph Vol. 94", "WHO 2015 processed meat report"},
	},
	{
		Name:           "BHA",
		Category:       "preservative",
		Rating:         types.RatingAvoid,
		Confidence:     80,
		Explanation:    "Butylated hydroxyanisole, a synthetic antioxidant reasonably anticipated to be a human carcinogen.",
		HealthConcerns: []string{"Possible carcinogen", "Endocrine disruption"},
		Alternatives:   []string{"Vitamin E (tocopherols)", "Rosemary extract"},
		Sources:        []string{"NTP 15th Report on Carcinogens"},
	},
	{
		Name:           "BHT",
		Category:       "preservative",
		Rating:         types.RatingAvoid,
		Confidence:     75,
		Explanation:    "Butylated hydroxytoluene, a synthetic antioxidant with mixed evidence on tumor promotion in animal studies.",
		HealthConcerns: []string{"Liver effects at high doses", "Possible tumor promoter"},
		Alternatives:   []string{"Vitamin E (tocopherols)"},
		Sources:        []string{"EFSA 2012 re-evaluation"},
	},
	// Sweeteners
	{
		Name:        "High Fructose Corn Syrup",
		Category:    "sweetener",
		Rating:      types.RatingAvoid,
		Confidence:  85,
		Explanation: "Highly processed sweetener strongly associated with obesity, insulin resistance and fatty liver disease.",
		HealthConcerns: []string{
			"Insulin resistance",
			"Non-alcoholic fatty liver disease",
			"Obesity",
		},
		Alternatives: []string{"Honey", "Maple syrup", "Cane sugar in moderation"},
		Sources:      []string{"AJCN 2004;79(4):537-43"},
	},
	{
		Name:           "Aspartame",
		Category:       "sweetener",
		Rating:         types.RatingCaution,
		Confidence:     75,
		Explanation:    "Artificial sweetener classified possibly carcinogenic by IARC in 2023; unsafe for people with phenylketonuria.",
		HealthConcerns: []string{"Contraindicated in PKU", "Headaches in sensitive individuals"},
		Alternatives:   []string{"Stevia", "Monk fruit extract"},
		Sources:        []string{"IARC/JECFA July 2023 assessment"},
	},
	{
		Name:           "Sucralose",
		Category:       "sweetener",
		Rating:         types.RatingCaution,
		Confidence:     70,
		Explanation:    "Artificial sweetener that may alter gut microbiota; degrades into potentially harmful compounds at baking temperatures.",
		HealthConcerns: []string{"Gut microbiome disruption", "Heat instability"},
		Alternatives:   []string{"Stevia", "Erythritol"},
		Sources:        []string{"J Toxicol Environ Health 2013;16(7)"},
	},
	{
		Name:           "Stevia",
		Category:       "sweetener",
		Rating:         types.RatingSafe,
		Confidence:     85,
		Explanation:    "Plant-derived non-caloric sweetener with a long history of use and GRAS status for purified steviol glycosides.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{"FDA GRAS notices 253, 275"},
	},
	{
		Name:           "Sugar",
		Category:       "sweetener",
		Rating:         types.RatingCaution,
		Confidence:     75,
		Explanation:    "Added sugar; fine in moderation but dietary guidelines recommend under 10% of daily calories.",
		HealthConcerns: []string{"Dental caries", "Excess calorie intake"},
		Alternatives:   []string{"Fruit", "Smaller portions"},
		Sources:        []string{"Dietary Guidelines for Americans 2020-2025"},
	},
	{
		Name:           "Honey",
		Category:       "sweetener",
		Rating:         types.RatingSafe,
		Confidence:     80,
		Explanation:    "Natural sweetener with trace antioxidants; still an added sugar and unsuitable for infants under one year.",
		HealthConcerns: []string{"Infant botulism risk under 12 months"},
		Alternatives:   []string{},
		Sources:        []string{"CDC botulism guidance"},
	},
	// Colorants
	{
		Name:           "Artificial Color Red 40",
		Category:       "coloring",
		Rating:         types.RatingAvoid,
		Confidence:     75,
		Explanation:    "Azo dye linked to hyperactivity in sensitive children; requires a warning label in the EU.",
		HealthConcerns: []string{"Hyperactivity in children", "Allergic reactions"},
		Alternatives:   []string{"Beet juice", "Paprika extract"},
		Sources:        []string{"Lancet 2007 Southampton study", "EU Regulation 1333/2008"},
	},
	{
		Name:           "Tartrazine",
		Category:       "coloring",
		Rating:         types.RatingAvoid,
		Confidence:     75,
		Explanation:    "Yellow azo dye (Yellow 5) associated with hypersensitivity reactions and hyperactivity in children.",
		HealthConcerns: []string{"Urticaria in aspirin-sensitive people", "Hyperactivity"},
		Alternatives:   []string{"Turmeric", "Annatto"},
		Sources:        []string{"EFSA 2009 re-evaluation"},
	},
	{
		Name:           "Caramel Color",
		Category:       "coloring",
		Rating:         types.RatingCaution,
		Confidence:     65,
		Explanation:    "Class III/IV caramel colors can contain 4-MEI, a possible carcinogen formed during manufacture.",
		HealthConcerns: []string{"4-MEI content varies by class"},
		Alternatives:   []string{"Plain caramelized sugar"},
		Sources:        []string{"IARC Monograph Vol. 101"},
	},
	// Flavor enhancers and texturizers
	{
		Name:           "Monosodium Glutamate",
		Category:       "flavor enhancer",
		Rating:         types.RatingCaution,
		Confidence:     70,
		Explanation:    "Flavor enhancer that is GRAS but triggers transient symptoms (headache, flushing) in a minority of people.",
		HealthConcerns: []string{"MSG symptom complex in sensitive individuals"},
		Alternatives:   []string{"Yeast extract", "Mushroom powder"},
		Sources:        []string{"FDA backgrounder on MSG"},
	},
	{
		Name:           "Carrageenan",
		Category:       "thickener",
		Rating:         types.RatingAvoid,
		Confidence:     70,
		Explanation:    "Seaweed-derived thickener; degraded forms cause intestinal inflammation in animal models.",
		HealthConcerns: []string{"Gastrointestinal inflammation", "Possible ulceration"},
		Alternatives:   []string{"Guar gum", "Locust bean gum"},
		Sources:        []string{"Environ Health Perspect 2001;109(10)"},
	},
	{
		Name:           "Xanthan Gum",
		Category:       "thickener",
		Rating:         types.RatingSafe,
		Confidence:     75,
		Explanation:    "Fermentation-derived thickener, well tolerated at food-use levels; can be laxative in large amounts.",
		HealthConcerns: []string{"Digestive upset at high doses"},
		Alternatives:   []string{},
		Sources:        []string{"EFSA 2017 re-evaluation"},
	},
	{
		Name:           "Guar Gum",
		Category:       "thickener",
		Rating:         types.RatingSafe,
		Confidence:     75,
		Explanation:    "Soluble fiber from guar beans used as a thickener; benign at typical food concentrations.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{"FDA CFR 21 §184.1339"},
	},
	{
		Name:           "Soy Lecithin",
		Category:       "emulsifier",
		Rating:         types.RatingCaution,
		Confidence:     65,
		Explanation:    "Common emulsifier; a soy allergen carrier, though highly refined lecithin contains little soy protein.",
		HealthConcerns: []string{"Soy allergen"},
		Alternatives:   []string{"Sunflower lecithin"},
		Sources:        []string{"FDA GRAS database"},
	},
	{
		Name:           "Maltodextrin",
		Category:       "filler",
		Rating:         types.RatingCaution,
		Confidence:     70,
		Explanation:    "Highly processed starch derivative with a glycemic index higher than table sugar.",
		HealthConcerns: []string{"Blood sugar spikes"},
		Alternatives:   []string{"Whole-food starches"},
		Sources:        []string{"Eur J Nutr 2016;55(1)"},
	},
	// Natural ingredients
	{
		Name:           "Water",
		Category:       "natural",
		Rating:         types.RatingSafe,
		Confidence:     100,
		Explanation:    "Water.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{},
	},
	{
		Name:           "Salt",
		Category:       "mineral",
		Rating:         types.RatingCaution,
		Confidence:     70,
		Explanation:    "Essential in small amounts; most diets already exceed the recommended 2,300 mg sodium per day.",
		HealthConcerns: []string{"Hypertension at high intakes"},
		Alternatives:   []string{"Herbs and spices", "Potassium chloride blends"},
		Sources:        []string{"Dietary Guidelines for Americans 2020-2025"},
	},
	{
		Name:           "Olive Oil",
		Category:       "fat",
		Rating:         types.RatingSafe,
		Confidence:     90,
		Explanation:    "Monounsaturated fat with well-documented cardiovascular benefits.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{"NEJM 2013 PREDIMED trial"},
	},
	{
		Name:           "Palm Oil",
		Category:       "fat",
		Rating:         types.RatingCaution,
		Confidence:     60,
		Explanation:    "High in saturated fat; refining at high temperature creates glycidyl esters of concern.",
		HealthConcerns: []string{"Saturated fat content", "Process contaminants"},
		Alternatives:   []string{"Olive oil", "Canola oil"},
		Sources:        []string{"EFSA 2016 process contaminants opinion"},
	},
	{
		Name:           "Whey",
		Category:       "dairy",
		Rating:         types.RatingCaution,
		Confidence:     70,
		Explanation:    "Milk-derived protein; a dairy allergen and a problem for lactose intolerance.",
		HealthConcerns: []string{"Milk allergen", "Lactose content"},
		Alternatives:   []string{"Pea protein", "Rice protein"},
		Sources:        []string{"FDA major food allergen list"},
	},
	{
		Name:           "Gelatin",
		Category:       "gelling agent",
		Rating:         types.RatingCaution,
		Confidence:     75,
		Explanation:    "Animal-derived gelling agent; unsuitable for vegetarian, vegan, halal or kosher diets depending on source.",
		HealthConcerns: []string{},
		Alternatives:   []string{"Agar-agar", "Pectin"},
		Sources:        []string{"FDA CFR 21 §184"},
	},
	{
		Name:           "Natural Flavors",
		Category:       "flavoring",
		Rating:         types.RatingCaution,
		Confidence:     60,
		Explanation:    "Umbrella term that can cover dozens of undisclosed compounds, including animal-derived and allergenic carriers.",
		HealthConcerns: []string{"Undisclosed composition"},
		Alternatives:   []string{"Products naming specific flavors"},
		Sources:        []string{"FDA CFR 21 §101.22"},
	},
	// Vitamins
	{
		Name:           "Ascorbic Acid",
		Category:       "vitamin",
		Rating:         types.RatingSafe,
		Confidence:     90,
		Explanation:    "Vitamin C, added as a nutrient and antioxidant; safe at food-use levels.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{"NIH Office of Dietary Supplements"},
	},
	{
		Name:           "Tocopherols",
		Category:       "vitamin",
		Rating:         types.RatingSafe,
		Confidence:     90,
		Explanation:    "Vitamin E compounds used as natural antioxidants.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{"FDA GRAS database"},
	},
	{
		Name:           "Niacin",
		Category:       "vitamin",
		Rating:         types.RatingSafe,
		Confidence:     85,
		Explanation:    "Vitamin B3, added for enrichment; safe at fortification levels.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{"NIH Office of Dietary Supplements"},
	},
	{
		Name:           "Riboflavin",
		Category:       "vitamin",
		Rating:         types.RatingSafe,
		Confidence:     85,
		Explanation:    "Vitamin B2, used for enrichment and as a yellow colorant; safe at food-use levels.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{"NIH Office of Dietary Supplements"},
	},
	{
		Name:           "Folic Acid",
		Category:       "vitamin",
		Rating:         types.RatingSafe,
		Confidence:     85,
		Explanation:    "Synthetic folate used in mandatory grain fortification; protective against neural tube defects.",
		HealthConcerns: []string{},
		Alternatives:   []string{},
		Sources:        []string{"CDC folic acid recommendations"},
	},
	{
		Name:           "Citric Acid",
		Category:       "acidulant",
		Rating:         types.RatingSafe,
		Confidence:     85,
		Explanation:    "Fermentation-produced acidulant, ubiquitous and well tolerated; can erode enamel in acidic drinks.",
		HealthConcerns: []string{"Dental erosion in beverages"},
		Alternatives:   []string{},
		Sources:        []string{"FDA CFR 21 §184.1033"},
	},
}
