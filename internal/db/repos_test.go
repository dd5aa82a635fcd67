package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"aitendule/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// itemMockRows implements pgx.Rows for clothing item list queries
// (clothing_id, name, category).
type itemMockRows struct {
	data []struct {
		id       int
		name     string
		category string
	}
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

func (r *itemMockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *itemMockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	if r.idx >= 0 && r.idx < len(r.data) {
		*dest[0].(*int) = r.data[r.idx].id
		*dest[1].(*string) = r.data[r.idx].name
		*dest[2].(*types.Category) = types.Category(r.data[r.idx].category)
		return nil
	}
	return errors.New("no current row")
}

func (r *itemMockRows) Close()                                        { r.closed = true }
func (r *itemMockRows) Err() error                                    { return r.errVal }
func (r *itemMockRows) CommandTag() pgconn.CommandTag                 { return pgconn.CommandTag{} }
func (r *itemMockRows) FieldDescriptions() []pgconn.FieldDescription  { return nil }
func (r *itemMockRows) RawValues() [][]byte                           { return nil }
func (r *itemMockRows) Values() ([]any, error)                        { return nil, nil }
func (r *itemMockRows) Conn() *pgx.Conn                               { return nil }

// historyMockRows implements pgx.Rows for the choice history query
// (user_id, name, category, created_at, weather, temperature).
type historyMockRows struct {
	data   []types.HistoricalChoice
	idx    int
	closed bool
	errVal error
}

func (r *historyMockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *historyMockRows) Scan(dest ...any) error {
	if r.idx >= 0 && r.idx < len(r.data) {
		h := r.data[r.idx]
		*dest[0].(*int) = h.UserID
		*dest[1].(*string) = h.ItemName
		*dest[2].(*string) = h.Category
		*dest[3].(*time.Time) = h.ChosenAt
		*dest[4].(*string) = h.WeatherCondition
		*dest[5].(*float64) = h.TemperatureC
		return nil
	}
	return errors.New("no current row")
}

func (r *historyMockRows) Close()                                        { r.closed = true }
func (r *historyMockRows) Err() error                                    { return r.errVal }
func (r *historyMockRows) CommandTag() pgconn.CommandTag                 { return pgconn.CommandTag{} }
func (r *historyMockRows) FieldDescriptions() []pgconn.FieldDescription  { return nil }
func (r *historyMockRows) RawValues() [][]byte                           { return nil }
func (r *historyMockRows) Values() ([]any, error)                        { return nil, nil }
func (r *historyMockRows) Conn() *pgx.Conn                               { return nil }

// --- UserRepository Tests ---

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewUserRepository(dbMock)
	created := time.Now().Add(-48 * time.Hour)

	dbMock.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{"taro@example.com"}).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*int) = 7
			*dest[1].(*string) = "taro@example.com"
			*dest[2].(*string) = "$2a$10$abcdefghijklmnopqrstuv"
			*dest[3].(*time.Time) = created
			return nil
		}})

	u, err := repo.GetByEmail(context.Background(), "taro@example.com")
	require.NoError(t, err)
	assert.Equal(t, 7, u.ID)
	assert.Equal(t, "taro@example.com", u.Email)
	assert.Equal(t, created, u.CreatedAt)
	dbMock.AssertExpectations(t)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewUserRepository(dbMock)

	dbMock.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundUser, appErr.Code)
}

func TestUserRepository_GetByEmail_DBError(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewUserRepository(dbMock)

	dbMock.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection refused")})

	_, err := repo.GetByEmail(context.Background(), "taro@example.com")
	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

// --- LocationRepository Tests ---

func TestLocationRepository_Insert_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewLocationRepository(dbMock)

	dbMock.On("Exec", mock.Anything, mock.AnythingOfType("string"), []any{3, 35.6812, 139.7671}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), &types.UserLocation{
		UserID:    3,
		Latitude:  35.6812,
		Longitude: 139.7671,
	})
	require.NoError(t, err)
	dbMock.AssertExpectations(t)
}

func TestLocationRepository_LatestForUser_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewLocationRepository(dbMock)
	recorded := time.Now().Add(-time.Hour)

	dbMock.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{3}).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*int) = 3
			*dest[1].(*float64) = 35.6812
			*dest[2].(*float64) = 139.7671
			*dest[3].(*time.Time) = recorded
			return nil
		}})

	loc, err := repo.LatestForUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 35.6812, loc.Latitude)
	assert.Equal(t, 139.7671, loc.Longitude)
}

func TestLocationRepository_LatestForUser_NotFound(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewLocationRepository(dbMock)

	dbMock.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	_, err := repo.LatestForUser(context.Background(), 99)
	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundLocation, appErr.Code)
}

// --- ClothingRepository Tests ---

func TestClothingRepository_ListItems_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewClothingRepository(dbMock)

	rows := &itemMockRows{
		data: []struct {
			id       int
			name     string
			category string
		}{
			{1, "wool scarf", "accessory"},
			{2, "down jacket", "outer"},
			{3, "sneakers", "shoes"},
		},
		idx: -1,
	}
	dbMock.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	items, err := repo.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "wool scarf", items[0].Name)
	assert.Equal(t, types.CategoryAccessory, items[0].Category)
	assert.Equal(t, types.CategoryOuter, items[1].Category)
	assert.True(t, rows.closed)
}

func TestClothingRepository_ListItems_QueryError(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewClothingRepository(dbMock)

	dbMock.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("timeout"))

	_, err := repo.ListItems(context.Background())
	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestClothingRepository_SaveChoices_UpsertsAndInserts(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewClothingRepository(dbMock)
	chosen := time.Now()

	// One upsert returning a clothing_id, then one choice insert, per item.
	dbMock.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{"down jacket", "outer"}).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*int) = 42
			return nil
		}})
	dbMock.On("Exec", mock.Anything, mock.AnythingOfType("string"),
		[]any{5, 42, "snow", -2.5, true, chosen}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.SaveChoices(context.Background(), dbMock, &types.ChoiceRecord{
		UserID:           5,
		Items:            []types.ChosenItem{{Category: types.CategoryOuter, ItemName: "down jacket"}},
		WeatherCondition: "snow",
		TemperatureC:     -2.5,
		IsRecommended:    true,
		ChosenAt:         chosen,
	})
	require.NoError(t, err)
	dbMock.AssertExpectations(t)
}

func TestClothingRepository_SaveChoices_UpsertError(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewClothingRepository(dbMock)

	dbMock.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("constraint violation")})

	err := repo.SaveChoices(context.Background(), dbMock, &types.ChoiceRecord{
		UserID: 5,
		Items:  []types.ChosenItem{{Category: types.CategoryTops, ItemName: "t-shirt"}},
	})
	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestClothingRepository_ListHistory_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewClothingRepository(dbMock)
	base := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)

	rows := &historyMockRows{
		data: []types.HistoricalChoice{
			{UserID: 1, ItemName: "coat", Category: "アウター", ChosenAt: base, WeatherCondition: "clear", TemperatureC: 5},
			{UserID: 1, ItemName: "sandals", Category: "シューズ", ChosenAt: base.Add(time.Hour), WeatherCondition: "rain", TemperatureC: 28},
		},
		idx: -1,
	}
	dbMock.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	history, err := repo.ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "coat", history[0].ItemName)
	assert.Equal(t, "アウター", history[0].Category)
	assert.Equal(t, 28.0, history[1].TemperatureC)
}

// --- CityRepository Tests ---

func TestCityRepository_Add_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewCityRepository(dbMock)

	dbMock.On("Exec", mock.Anything, mock.AnythingOfType("string"), []any{3, "Sapporo"}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Add(context.Background(), 3, "Sapporo")
	require.NoError(t, err)
	dbMock.AssertExpectations(t)
}

func TestCityRepository_Add_Conflict(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewCityRepository(dbMock)

	dbMock.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 0"), nil)

	err := repo.Add(context.Background(), 3, "Sapporo")
	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeConflictCity, appErr.Code)
}

func TestCityRepository_DeleteByName_NotFound(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewCityRepository(dbMock)

	dbMock.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := repo.DeleteByName(context.Background(), 3, "Nagoya")
	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundCity, appErr.Code)
}

func TestCityRepository_DeleteByName_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewCityRepository(dbMock)

	dbMock.On("Exec", mock.Anything, mock.AnythingOfType("string"), []any{3, "Nagoya"}).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	err := repo.DeleteByName(context.Background(), 3, "Nagoya")
	require.NoError(t, err)
	dbMock.AssertExpectations(t)
}
