package simulator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// PriceSnapshot is the on-disk form of the last simulated prices.
type PriceSnapshot struct {
	Prices    map[string]float64 `json:"prices"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// LoadPrices reads the last simulated close per symbol. Returns an empty map if the file doesn't exist.
func LoadPrices(filePath string) (map[string]float64, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]float64{}, nil
		}
		return nil, err
	}
	var snap PriceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.Prices == nil {
		snap.Prices = map[string]float64{}
	}
	return snap.Prices, nil
}

// SavePrices writes the last simulated close per symbol to a JSON file.
func SavePrices(filePath string, prices map[string]float64) error {
	snap := PriceSnapshot{Prices: prices, UpdatedAt: time.Now()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
