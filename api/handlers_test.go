package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locumbase/shift-engine/rates"
	"github.com/locumbase/shift-engine/shifts"
	"github.com/locumbase/shift-engine/store/sqlite"
)

const testRatesYAML = `
rates:
  PHARMACIST:
    PHARMACIST:
      full_part_time:
        weekday: "48.50"
        saturday: "55.00"
      casual:
        weekday: "55.75"
        saturday: "60.00"
  ASSISTANT:
    level_2:
      casual:
        weekday: "31.15"
        saturday: "35.20"
holidays:
  NSW:
    - "2026-12-25"
`

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	table, holidays, err := rates.Parse([]byte(testRatesYAML))
	require.NoError(t, err)

	h := NewHandler(store, rates.NewResolver(table, holidays), shifts.NullSink{})
	return NewRouter(h)
}

func doRequest(t *testing.T, router *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func registerBaysideWithWorker(t *testing.T, router *chi.Mux) {
	t.Helper()
	rec := doRequest(t, router, "POST", "/api/pharmacies", RegisterPharmacyRequest{
		PharmacyID: "ph-1",
		State:      "NSW",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, router, "POST", "/api/workers", RegisterWorkerRequest{
		UserID:              "u-marco",
		PharmacyID:          "ph-1",
		EmploymentType:      "CASUAL",
		ClassificationLevel: "level_2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func createSaturdayShift(t *testing.T, router *chi.Mux) ShiftDTO {
	t.Helper()
	bonus := "5.00"
	rec := doRequest(t, router, "POST", "/api/shifts", CreateShiftRequest{
		PharmacyID:        "ph-1",
		PostedBy:          "u-owner",
		RoleNeeded:        "ASSISTANT",
		EmploymentType:    "CASUAL",
		OwnerAdjustedRate: &bonus,
		Slots: []CreateSlotRequest{{
			Date:      "2026-09-05",
			StartTime: "09:00",
			EndTime:   "17:00",
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeJSON[ShiftDTO](t, rec)
}

func TestShiftLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	registerBaysideWithWorker(t, router)

	// GIVEN a posted Saturday shift at an independent unclaimed pharmacy
	shift := createSaturdayShift(t, router)
	assert.Equal(t, "PLATFORM", shift.CurrentTier)
	assert.Equal(t, []string{"PLATFORM"}, shift.TierPath)
	require.Len(t, shift.Slots, 1)
	slotID := shift.Slots[0].ID

	// WHEN occurrences are listed over September
	rec := doRequest(t, router, "GET",
		"/api/shifts/"+shift.ID+"/occurrences?from=2026-09-01&to=2026-09-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	occ := decodeJSON[[]OccurrenceDTO](t, rec)
	require.Len(t, occ, 1)
	assert.Equal(t, "2026-09-05", occ[0].Date)

	// AND a worker expresses interest
	rec = doRequest(t, router, "POST", "/api/shifts/"+shift.ID+"/interests",
		ExpressInterestRequest{UserID: "u-marco"})
	require.Equal(t, http.StatusCreated, rec.Code)
	interest := decodeJSON[map[string]any](t, rec)
	interestID := interest["id"].(string)

	// THEN the poster sees an anonymized interest at the platform tier
	rec = doRequest(t, router, "GET", "/api/shifts/"+shift.ID+"/interests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	views := decodeJSON[[]InterestDTO](t, rec)
	require.Len(t, views, 1)
	assert.Equal(t, "anonymous", views[0].WorkerRef)

	// WHEN the identity is revealed
	rec = doRequest(t, router, "POST", "/api/interests/"+interestID+"/reveal", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, "GET", "/api/shifts/"+shift.ID+"/interests", nil)
	views = decodeJSON[[]InterestDTO](t, rec)
	require.Len(t, views, 1)
	assert.Equal(t, "u-marco", views[0].WorkerRef)
	assert.True(t, views[0].Revealed)

	// AND the worker is assigned to the occurrence
	rec = doRequest(t, router, "POST", "/api/assignments", AssignRequest{
		SlotID:     slotID,
		SlotDate:   "2026-09-05",
		UserID:     "u-marco",
		AssignedBy: "u-owner",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decodeJSON[AssignmentDTO](t, rec)

	// THEN the Saturday casual rate plus the owner bonus is locked
	rate, err := decimal.NewFromString(a.UnitRate)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("40.20")), "got %s", a.UnitRate)
	assert.Equal(t, "saturday", a.RateReason.LookupKey)
	assert.Equal(t, "level_2", a.RateReason.RoleKey)
	assert.Equal(t, shifts.CategoryCasual, a.RateReason.Employment)
	assert.Equal(t, shifts.RateSourceAward, a.RateReason.Source)
	assert.True(t, a.RateReason.BonusApplied)

	// AND the invoice line reflects 8 hours at the locked rate
	rec = doRequest(t, router, "GET", "/api/assignments/"+a.ID+"/invoice-line", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	line := decodeJSON[InvoiceLineDTO](t, rec)
	assert.Equal(t, "8", line.Quantity)
	amount, err := decimal.NewFromString(line.Amount)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("321.60")), "got %s", line.Amount)
}

func TestAssignmentConflictOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	registerBaysideWithWorker(t, router)
	shift := createSaturdayShift(t, router)
	slotID := shift.Slots[0].ID

	assign := AssignRequest{
		SlotID:     slotID,
		SlotDate:   "2026-09-05",
		UserID:     "u-marco",
		AssignedBy: "u-owner",
	}
	rec := doRequest(t, router, "POST", "/api/assignments", assign)
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN a second worker targets the same occurrence
	assign.UserID = "u-jess"
	rec = doRequest(t, router, "POST", "/api/assignments", assign)

	// THEN the conflict surfaces as 409
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Contains(t, resp.Error, "u-marco")

	// AND an explicit reassignment succeeds
	assign.Reassign = true
	rec = doRequest(t, router, "POST", "/api/assignments", assign)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestEscalateRejectsUnreachableTier(t *testing.T) {
	router := newTestRouter(t)
	registerBaysideWithWorker(t, router)
	shift := createSaturdayShift(t, router)

	// The independent unclaimed pharmacy only has the platform tier.
	rec := doRequest(t, router, "POST", "/api/shifts/"+shift.ID+"/escalate",
		EscalateRequest{Tier: "OWNER_CHAIN"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrgAdminShiftKeepsStaffPathAcrossRequests(t *testing.T) {
	router := newTestRouter(t)
	registerBaysideWithWorker(t, router)

	// GIVEN an org-admin posting at the independent unclaimed pharmacy
	rec := doRequest(t, router, "POST", "/api/shifts", CreateShiftRequest{
		PharmacyID:       "ph-1",
		PostedBy:         "u-admin",
		PostedByOrgAdmin: true,
		RoleNeeded:       "ASSISTANT",
		EmploymentType:   "CASUAL",
		Slots: []CreateSlotRequest{{
			Date:      "2026-09-05",
			StartTime: "09:00",
			EndTime:   "17:00",
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	shift := decodeJSON[ShiftDTO](t, rec)
	assert.Equal(t, "FULL_PART_TIME", shift.CurrentTier)
	require.Len(t, shift.TierPath, 5)

	// THEN a later read still resolves the full staff path, not PLATFORM
	rec = doRequest(t, router, "GET", "/api/shifts/"+shift.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[ShiftDTO](t, rec)
	assert.Equal(t, "FULL_PART_TIME", got.CurrentTier)
	assert.Len(t, got.TierPath, 5)

	// AND a staff tier remains selectable after creation
	rec = doRequest(t, router, "POST", "/api/shifts/"+shift.ID+"/escalate",
		EscalateRequest{Tier: "LOCUM_CASUAL"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decodeJSON[ShiftDTO](t, rec)
	assert.Equal(t, "LOCUM_CASUAL", got.CurrentTier)
}

func TestNotFoundMapping(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "GET", "/api/shifts/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, "GET", "/api/assignments/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateShiftValidationOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	registerBaysideWithWorker(t, router)

	// Rate fields are a pharmacist-only concept.
	rt := "FIXED"
	rec := doRequest(t, router, "POST", "/api/shifts", CreateShiftRequest{
		PharmacyID: "ph-1",
		PostedBy:   "u-owner",
		RoleNeeded: "ASSISTANT",
		RateType:   &rt,
		Slots: []CreateSlotRequest{{
			Date:      "2026-09-05",
			StartTime: "09:00",
			EndTime:   "17:00",
		}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A shift without slots is rejected.
	rec = doRequest(t, router, "POST", "/api/shifts", CreateShiftRequest{
		PharmacyID: "ph-1",
		PostedBy:   "u-owner",
		RoleNeeded: "ASSISTANT",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeedAndReset(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "POST", "/api/seed", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, "GET", "/api/shifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]ShiftDTO](t, rec)
	assert.NotEmpty(t, list)

	rec = doRequest(t, router, "POST", "/api/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, "GET", "/api/shifts", nil)
	list = decodeJSON[[]ShiftDTO](t, rec)
	assert.Empty(t, list)
}
