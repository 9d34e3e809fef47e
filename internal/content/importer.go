package content

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/audit"
	"carta-backend/internal/auth"
	"carta-backend/internal/models"
)

// ImportResult summarises a spreadsheet import. Errors name the 1-based
// spreadsheet row they refer to.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Column order of the import sheet.
const (
	colName = iota
	colDescription
	colPrice
	colCategory
	colAvailable
)

var headerNames = map[string]bool{
	"name":   true,
	"nombre": true,
	"dish":   true,
	"plato":  true,
}

// ImportDishes reads the first sheet of an .xlsx workbook with the columns
// name | description | price | category | available and creates one dish per
// valid row. Invalid rows are skipped and reported; valid rows are stored in
// one transaction.
func (s *Service) ImportDishes(ctx context.Context, actor auth.Principal, restaurantID string, r io.Reader) (ImportResult, error) {
	if err := ensureRestaurant(s.db.WithContext(ctx), restaurantID); err != nil {
		return ImportResult{}, err
	}

	book, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, apperr.Validation("file is not a readable .xlsx workbook")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, apperr.Validation("workbook has no sheets")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, apperr.Validation("sheet could not be read")
	}

	result := ImportResult{Errors: []string{}}
	var dishes []models.Dish

	for i, row := range rows {
		line := i + 1
		if i == 0 && isHeader(row) {
			continue
		}
		if isBlank(row) {
			continue
		}

		dish, err := parseDishRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		dish.RestaurantID = restaurantID
		dishes = append(dishes, dish)
	}

	if len(dishes) == 0 {
		return result, nil
	}

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&dishes).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: restaurantID,
			UserID:       actor.UserID,
			EntityType:   audit.EntityDish,
			Action:       models.AuditActionImport,
			Description:  fmt.Sprintf("imported %d dishes", len(dishes)),
			After:        dishes,
		})
	})
	if err != nil {
		return ImportResult{}, err
	}

	result.Imported = len(dishes)
	s.log.Info("dishes imported",
		zap.String("restaurant_id", restaurantID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isHeader(row []string) bool {
	return headerNames[strings.ToLower(cell(row, colName))]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseDishRow(row []string) (models.Dish, error) {
	name := cell(row, colName)
	if name == "" {
		return models.Dish{}, fmt.Errorf("name is empty")
	}

	rawPrice := strings.ReplaceAll(cell(row, colPrice), ",", ".")
	if rawPrice == "" {
		return models.Dish{}, fmt.Errorf("price is empty")
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return models.Dish{}, fmt.Errorf("price %q is not a number", cell(row, colPrice))
	}
	if price < 0 {
		return models.Dish{}, fmt.Errorf("price must be greater than or equal to 0")
	}

	available, err := parseAvailable(cell(row, colAvailable))
	if err != nil {
		return models.Dish{}, err
	}

	return models.Dish{
		Name:        name,
		Description: cell(row, colDescription),
		Price:       price,
		Category:    cell(row, colCategory),
		Available:   available,
	}, nil
}

// parseAvailable treats an empty cell as available.
func parseAvailable(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "1", "true", "yes", "y", "si", "sí", "x":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("available %q is not yes or no", s)
	}
}
