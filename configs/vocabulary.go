package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Category is one ranking-source category.
type Category struct {
	Name string `yaml:"name"`
	CID  string `yaml:"cid"`
}

// Vocabulary is the static word lists used by trend collection and listing filters.
type Vocabulary struct {
	// Categories are collected in order; earlier categories win cross-category dedup.
	Categories []Category `yaml:"categories"`

	// Particles are grammatical suffixes stripped from keyword tokens.
	Particles []string `yaml:"particles"`

	// AccessoryMarkers flag bare accessories or packaging.
	AccessoryMarkers []string `yaml:"accessory_markers"`

	// FreightMarkers flag cash-on-delivery or freight-only listings.
	FreightMarkers []string `yaml:"freight_markers"`

	// BulkyMarkers flag furniture-class goods.
	BulkyMarkers []string `yaml:"bulky_markers"`

	// LightweightAllowlist lists keywords exempt from the bulky check.
	LightweightAllowlist []string `yaml:"lightweight_allowlist"`
}

// DefaultVocabulary is used when no YAML file is present.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Categories: []Category{
			{Name: "생활/주방", CID: "50000008"},
			{Name: "디지털/가전", CID: "50000003"},
		},
		Particles:            []string{"으로", "에서", "은", "는", "이", "가", "을", "를", "의", "에", "와", "과", "도", "로", "용"},
		AccessoryMarkers:     []string{"케이스", "커버", "부품", "리필", "필름", "스티커", "포장", "박스", "파우치", "액세서리", "악세사리"},
		FreightMarkers:       []string{"착불", "화물", "용달", "설치배송", "직배송"},
		BulkyMarkers:         []string{"가구", "침대", "소파", "의자", "건조대", "금고", "세탁기", "냉장고", "매트리스", "책상"},
		LightweightAllowlist: []string{"접이식 의자", "캠핑 의자", "미니 건조대", "빨래 건조대"},
	}
}

// LoadVocabulary reads the YAML vocabulary at path. A missing file yields
// DefaultVocabulary; lists absent from the file keep their defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	vocab := DefaultVocabulary()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return vocab, nil
		}
		return vocab, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}

	var fromFile Vocabulary
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return vocab, fmt.Errorf("failed to parse vocabulary %s: %w", path, err)
	}

	if len(fromFile.Categories) > 0 {
		vocab.Categories = fromFile.Categories
	}
	if len(fromFile.Particles) > 0 {
		vocab.Particles = fromFile.Particles
	}
	if len(fromFile.AccessoryMarkers) > 0 {
		vocab.AccessoryMarkers = fromFile.AccessoryMarkers
	}
	if len(fromFile.FreightMarkers) > 0 {
		vocab.FreightMarkers = fromFile.FreightMarkers
	}
	if len(fromFile.BulkyMarkers) > 0 {
		vocab.BulkyMarkers = fromFile.BulkyMarkers
	}
	if len(fromFile.LightweightAllowlist) > 0 {
		vocab.LightweightAllowlist = fromFile.LightweightAllowlist
	}
	return vocab, nil
}
