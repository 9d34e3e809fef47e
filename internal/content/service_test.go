package content_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/audit"
	"carta-backend/internal/auth"
	"carta-backend/internal/content"
	"carta-backend/internal/database"
	"carta-backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db    *gorm.DB
	svc   *content.Service
	rest  models.Restaurant
	other models.Restaurant
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	f := fixture{
		db:    db,
		svc:   content.NewService(db, zap.NewNop()),
		rest:  models.Restaurant{Name: "Pizza Feliz", Slug: "pizza-feliz"},
		other: models.Restaurant{Name: "Otro", Slug: "otro"},
	}
	require.NoError(t, db.Create(&f.rest).Error)
	require.NoError(t, db.Create(&f.other).Error)
	return f
}

func (f fixture) admin() auth.Principal {
	return auth.Principal{UserID: "u-1", Role: models.RoleRestaurantAdmin, RestaurantID: &f.rest.ID}
}

func TestDishLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	actor := f.admin()

	dish, err := f.svc.CreateDish(ctx, actor, content.DishInput{
		RestaurantID: f.rest.ID, Name: " Margarita ", Price: ptr(9.5), Category: "Pizzas",
	})
	require.NoError(t, err)
	require.Equal(t, "Margarita", dish.Name)
	require.True(t, dish.Available)

	got, err := f.svc.GetDish(ctx, actor, dish.ID)
	require.NoError(t, err)
	require.Equal(t, 9.5, got.Price)

	updated, err := f.svc.UpdateDish(ctx, actor, dish.ID, content.DishUpdate{Price: ptr(10.0), Description: ptr("Tomate y mozzarella")})
	require.NoError(t, err)
	require.Equal(t, 10.0, updated.Price)
	require.Equal(t, "Margarita", updated.Name)
	require.Equal(t, "Tomate y mozzarella", updated.Description)

	list, err := f.svc.ListDishes(ctx, f.rest.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	empty, err := f.svc.ListDishes(ctx, f.other.ID)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	require.NoError(t, f.svc.DeleteDish(ctx, actor, dish.ID))
	_, err = f.svc.GetDish(ctx, actor, dish.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = f.svc.DeleteDish(ctx, actor, dish.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	logs, err := audit.NewService(f.db).List(ctx, audit.Filter{EntityType: audit.EntityDish, EntityID: dish.ID})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	require.Equal(t, models.AuditActionDelete, logs[0].Action)
	require.Equal(t, "u-1", logs[0].UserID)
}

func TestDishValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateDish(ctx, auth.Principal{}, content.DishInput{RestaurantID: f.rest.ID, Name: "  ", Price: ptr(1.0)})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.CreateDish(ctx, auth.Principal{}, content.DishInput{RestaurantID: f.rest.ID, Name: "X", Price: ptr(-1.0)})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.CreateDish(ctx, auth.Principal{}, content.DishInput{RestaurantID: "missing", Name: "X", Price: ptr(1.0)})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	for _, op := range []func() error{
		func() error { _, err := f.svc.GetDish(ctx, auth.Principal{}, "missing"); return err },
		func() error { _, err := f.svc.UpdateDish(ctx, auth.Principal{}, "missing", content.DishUpdate{}); return err },
		func() error { _, err := f.svc.ToggleDish(ctx, auth.Principal{}, "missing"); return err },
	} {
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(op()))
	}
}

func TestToggleTwiceRestoresAvailability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, start := range []bool{true, false} {
		dish, err := f.svc.CreateDish(ctx, auth.Principal{}, content.DishInput{
			RestaurantID: f.rest.ID, Name: "Calzone", Price: ptr(11.0), Available: ptr(start),
		})
		require.NoError(t, err)
		require.Equal(t, start, dish.Available)

		once, err := f.svc.ToggleDish(ctx, auth.Principal{}, dish.ID)
		require.NoError(t, err)
		require.Equal(t, !start, once.Available)

		twice, err := f.svc.ToggleDish(ctx, auth.Principal{}, dish.ID)
		require.NoError(t, err)
		require.Equal(t, start, twice.Available)
	}

	special, err := f.svc.CreateSpecial(ctx, auth.Principal{}, content.SpecialInput{RestaurantID: f.rest.ID, Name: "Paella", Price: ptr(14.0)})
	require.NoError(t, err)
	once, err := f.svc.ToggleSpecial(ctx, auth.Principal{}, special.ID)
	require.NoError(t, err)
	require.False(t, once.Available)
	twice, err := f.svc.ToggleSpecial(ctx, auth.Principal{}, special.ID)
	require.NoError(t, err)
	require.True(t, twice.Available)
}

func TestRestaurantAdminCannotTouchOtherTenant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	foreign, err := f.svc.CreateSpecial(ctx, auth.Principal{}, content.SpecialInput{RestaurantID: f.other.ID, Name: "Foreign", Price: ptr(3.0)})
	require.NoError(t, err)

	_, err = f.svc.GetSpecial(ctx, f.admin(), foreign.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.ToggleSpecial(ctx, f.admin(), foreign.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(f.svc.DeleteSpecial(ctx, f.admin(), foreign.ID)))

	root := auth.Principal{UserID: "root", Role: models.RoleSuperAdmin}
	_, err = f.svc.UpdateSpecial(ctx, root, foreign.ID, content.SpecialUpdate{Name: ptr("Renamed")})
	require.NoError(t, err)
}

func TestDayMenuKeepsItsOwnSnapshot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	actor := f.admin()

	category, err := f.svc.CreateMenuCategory(ctx, actor, content.MenuCategoryInput{
		RestaurantID: f.rest.ID,
		Name:         "Primeros",
		Options:      []models.Option{{Name: "Sopa", Description: "de fideos"}, {Name: "Ensalada"}},
	})
	require.NoError(t, err)
	require.Len(t, category.Options, 2)

	dayMenu, err := f.svc.CreateDayMenu(ctx, actor, content.DayMenuInput{
		RestaurantID: f.rest.ID,
		Date:         "2025-03-14T21:30:00-05:00",
		Name:         "Menú del día",
		Price:        ptr(12.5),
		Sections:     []models.DayMenuSection{{CategoryName: category.Name, Items: category.Options}},
	})
	require.NoError(t, err)
	require.True(t, dayMenu.Active)
	require.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), dayMenu.Date)

	_, err = f.svc.UpdateMenuCategory(ctx, actor, category.ID, content.MenuCategoryUpdate{
		Options: &[]models.Option{{Name: "Gazpacho"}},
	})
	require.NoError(t, err)

	stored, err := f.svc.GetDayMenu(ctx, actor, dayMenu.ID)
	require.NoError(t, err)
	require.Len(t, stored.Sections, 1)
	require.Equal(t, "Sopa", stored.Sections[0].Items[0].Name)
	require.Equal(t, "de fideos", stored.Sections[0].Items[0].Description)

	updated, err := f.svc.UpdateDayMenu(ctx, actor, dayMenu.ID, content.DayMenuUpdate{Active: ptr(false), Date: ptr("2025-03-16")})
	require.NoError(t, err)
	require.False(t, updated.Active)
	require.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), updated.Date)

	_, err = f.svc.CreateDayMenu(ctx, actor, content.DayMenuInput{RestaurantID: f.rest.ID, Date: "14/03/2025", Name: "Bad"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.CreateMenuCategory(ctx, actor, content.MenuCategoryInput{RestaurantID: f.rest.ID, Name: "X", Options: []models.Option{{Name: " "}}})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, f.svc.DeleteMenuCategory(ctx, actor, category.ID))
	require.NoError(t, f.svc.DeleteDayMenu(ctx, actor, dayMenu.ID))
	_, err = f.svc.GetMenuCategory(ctx, actor, category.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestParseDay(t *testing.T) {
	d, err := content.ParseDay("2025-03-14")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), d)

	d, err = content.ParseDay("2025-03-14T23:59:59Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), d)

	_, err = content.ParseDay("")
	require.Error(t, err)
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cellRef, &row))
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportDishes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buf := workbook(t, [][]any{
		{"Name", "Description", "Price", "Category", "Available"},
		{"Margarita", "Tomate", "9,5", "Pizzas", "sí"},
		{"Calzone", "", 11, "Pizzas", "no"},
		{"", "missing name", 3, "", ""},
		{"Tiramisú", "", "abc", "Postres", ""},
		{},
		{"Agua", "", -1, "Bebidas", ""},
		{"Flan", "", 4, "Postres", ""},
	})

	res, err := f.svc.ImportDishes(ctx, f.admin(), f.rest.ID, buf)
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)
	require.Equal(t, 3, res.Skipped)
	require.Len(t, res.Errors, 3)
	require.Contains(t, res.Errors[0], "row 4")

	dishes, err := f.svc.ListDishes(ctx, f.rest.ID)
	require.NoError(t, err)
	require.Len(t, dishes, 3)

	byName := map[string]models.Dish{}
	for _, d := range dishes {
		byName[d.Name] = d
	}
	require.Equal(t, 9.5, byName["Margarita"].Price)
	require.True(t, byName["Margarita"].Available)
	require.False(t, byName["Calzone"].Available)
	require.True(t, byName["Flan"].Available)

	logs, err := audit.NewService(f.db).List(ctx, audit.Filter{RestaurantID: f.rest.ID, EntityType: audit.EntityDish})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, models.AuditActionImport, logs[0].Action)
}

func TestImportRejectsGarbage(t *testing.T) {
	f := setup(t)
	_, err := f.svc.ImportDishes(context.Background(), auth.Principal{}, f.rest.ID, bytes.NewBufferString("not a workbook"))
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.ImportDishes(context.Background(), auth.Principal{}, "missing", workbook(t, [][]any{{"A", "", 1}}))
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
