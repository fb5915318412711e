package bot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nalyk/shopbot/internal/navigation"
)

const maxBatchSize = 5000

type itemEntry struct {
	ProductID   int64  `json:"product_id"`
	PrivateData string `json:"private_data"`
}

// ParseItemsJSON reads a stock batch from a JSON array and groups the
// entries per target product. Entries without a product_id fall back to
// targetID; when no target was chosen either, the entry is rejected.
func ParseItemsJSON(content []byte, targetID int64) (map[int64][]string, error) {
	var entries []itemEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("the file is not a valid JSON array: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("the file contains no entries")
	}
	if len(entries) > maxBatchSize {
		return nil, fmt.Errorf("the file has %d entries, the limit is %d", len(entries), maxBatchSize)
	}

	batches := make(map[int64][]string)
	for i, entry := range entries {
		if strings.TrimSpace(entry.PrivateData) == "" {
			return nil, fmt.Errorf("entry %d has no private_data", i+1)
		}
		productID := entry.ProductID
		if productID == 0 {
			productID = targetID
		}
		if productID == navigation.RootCategoryID || productID == 0 {
			return nil, fmt.Errorf("entry %d names no product_id and no product is targeted", i+1)
		}
		batches[productID] = append(batches[productID], entry.PrivateData)
	}
	return batches, nil
}

// ParseItemsText reads a stock batch as one item per line, all going to
// the targeted product.
func ParseItemsText(content []byte, targetID int64) (map[int64][]string, error) {
	if targetID == navigation.RootCategoryID || targetID == 0 {
		return nil, fmt.Errorf("text upload needs a target product")
	}
	var privateData []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		privateData = append(privateData, line)
	}
	if len(privateData) == 0 {
		return nil, fmt.Errorf("the file contains no lines")
	}
	if len(privateData) > maxBatchSize {
		return nil, fmt.Errorf("the file has %d lines, the limit is %d", len(privateData), maxBatchSize)
	}
	return map[int64][]string{targetID: privateData}, nil
}
