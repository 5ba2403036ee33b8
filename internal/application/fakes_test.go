package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/availability"
	bookingDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/booking"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/catalog"
	promoDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/promo"
)

// In-memory fakes for service tests.

type fakeBookingRepo struct {
	bookings []*bookingDomain.Booking
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	for _, existing := range r.bookings {
		if existing.Reference() == b.Reference() {
			return apperror.NewConflictError("booking reference already exists")
		}
	}
	r.bookings = append(r.bookings, b)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	for i, existing := range r.bookings {
		if existing.ID() == b.ID() {
			r.bookings[i] = b
			return nil
		}
	}
	return apperror.NewNotFoundError("booking", b.ID().String())
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	for _, b := range r.bookings {
		if b.ID() == id {
			return b, nil
		}
	}
	return nil, apperror.NewNotFoundError("booking", id.String())
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, ref string) (*bookingDomain.Booking, error) {
	for _, b := range r.bookings {
		if b.Reference() == ref {
			return b, nil
		}
	}
	return nil, apperror.NewNotFoundError("booking", ref)
}

func (r *fakeBookingRepo) FindByCustomer(_ context.Context, customerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.CustomerID() == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.bookings, int64(len(r.bookings)), nil
}

func (r *fakeBookingRepo) CountActiveOnDate(_ context.Context, date time.Time) (int64, error) {
	var n int64
	for _, b := range r.bookings {
		if b.EventDate().Format("2006-01-02") == date.Format("2006-01-02") && b.Status() != bookingDomain.StatusCancelled {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) GetBookingStats(_ context.Context) (float64, map[string]int64, error) {
	var revenue float64
	counts := map[string]int64{}
	for _, b := range r.bookings {
		counts[string(b.Status())]++
		if b.Status() == bookingDomain.StatusCompleted {
			revenue += b.Total()
		}
	}
	return revenue, counts, nil
}

type fakePromoRepo struct {
	promos map[string]*promoDomain.PromoCode
}

func newFakePromoRepo(promos ...*promoDomain.PromoCode) *fakePromoRepo {
	r := &fakePromoRepo{promos: map[string]*promoDomain.PromoCode{}}
	for _, p := range promos {
		r.promos[p.Code()] = p
	}
	return r
}

func (r *fakePromoRepo) Save(_ context.Context, p *promoDomain.PromoCode) error {
	if _, ok := r.promos[p.Code()]; ok {
		return apperror.NewConflictError("promo code already exists")
	}
	r.promos[p.Code()] = p
	return nil
}

func (r *fakePromoRepo) Update(_ context.Context, p *promoDomain.PromoCode) error {
	r.promos[p.Code()] = p
	return nil
}

func (r *fakePromoRepo) FindByCode(_ context.Context, code string) (*promoDomain.PromoCode, error) {
	p, ok := r.promos[promoDomain.FormatCode(code)]
	if !ok {
		return nil, apperror.NewNotFoundError("promo code", code)
	}
	return p, nil
}

func (r *fakePromoRepo) FindByID(_ context.Context, id uuid.UUID) (*promoDomain.PromoCode, error) {
	for _, p := range r.promos {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, apperror.NewNotFoundError("promo code", id.String())
}

func (r *fakePromoRepo) FindAll(_ context.Context) ([]*promoDomain.PromoCode, error) {
	out := make([]*promoDomain.PromoCode, 0, len(r.promos))
	for _, p := range r.promos {
		out = append(out, p)
	}
	return out, nil
}

type fakeCatalogRepo struct {
	packages map[uuid.UUID]*catalog.Package
	extras   map[uuid.UUID]*catalog.Extra
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		packages: map[uuid.UUID]*catalog.Package{},
		extras:   map[uuid.UUID]*catalog.Extra{},
	}
}

func (r *fakeCatalogRepo) SavePackage(_ context.Context, p *catalog.Package) error {
	r.packages[p.ID] = p
	return nil
}

func (r *fakeCatalogRepo) UpdatePackage(_ context.Context, p *catalog.Package) error {
	r.packages[p.ID] = p
	return nil
}

func (r *fakeCatalogRepo) FindPackageByID(_ context.Context, id uuid.UUID) (*catalog.Package, error) {
	p, ok := r.packages[id]
	if !ok {
		return nil, apperror.NewNotFoundError("package", id.String())
	}
	return p, nil
}

func (r *fakeCatalogRepo) FindActivePackages(_ context.Context) ([]*catalog.Package, error) {
	var out []*catalog.Package
	for _, p := range r.packages {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) SaveExtra(_ context.Context, e *catalog.Extra) error {
	r.extras[e.ID] = e
	return nil
}

func (r *fakeCatalogRepo) UpdateExtra(_ context.Context, e *catalog.Extra) error {
	r.extras[e.ID] = e
	return nil
}

func (r *fakeCatalogRepo) FindExtrasByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Extra, error) {
	out := make([]*catalog.Extra, 0, len(ids))
	for _, id := range ids {
		e, ok := r.extras[id]
		if !ok {
			return nil, apperror.NewNotFoundError("extra", id.String())
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindActiveExtras(_ context.Context) ([]*catalog.Extra, error) {
	var out []*catalog.Extra
	for _, e := range r.extras {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeBlackoutRepo struct {
	blackouts []availability.BlackoutDate
}

func (r *fakeBlackoutRepo) Save(_ context.Context, b *availability.BlackoutDate) error {
	for _, existing := range r.blackouts {
		if existing.Date.Format("2006-01-02") == b.Date.Format("2006-01-02") {
			return apperror.NewConflictError("blackout date already exists")
		}
	}
	r.blackouts = append(r.blackouts, *b)
	return nil
}

func (r *fakeBlackoutRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, b := range r.blackouts {
		if b.ID == id {
			r.blackouts = append(r.blackouts[:i], r.blackouts[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFoundError("blackout date", id.String())
}

func (r *fakeBlackoutRepo) FindAll(_ context.Context) ([]availability.BlackoutDate, error) {
	return r.blackouts, nil
}

func (r *fakeBlackoutRepo) FindBetween(_ context.Context, start, end time.Time) ([]availability.BlackoutDate, error) {
	var out []availability.BlackoutDate
	for _, b := range r.blackouts {
		key := b.Date.Format("2006-01-02")
		if key >= start.Format("2006-01-02") && key <= end.Format("2006-01-02") {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeOrchestrator simulates the booking saga against the fake repo.
type fakeOrchestrator struct {
	repo          *fakeBookingRepo
	conflictsLeft int
	createCalls   int
	confirmed     []uuid.UUID
	cancelled     map[uuid.UUID]string
	completed     []uuid.UUID
}

func newFakeOrchestrator(repo *fakeBookingRepo) *fakeOrchestrator {
	return &fakeOrchestrator{repo: repo, cancelled: map[uuid.UUID]string{}}
}

func (o *fakeOrchestrator) CreateBookingSaga(ctx context.Context, b *bookingDomain.Booking) (string, error) {
	o.createCalls++
	if o.conflictsLeft > 0 {
		o.conflictsLeft--
		return "", apperror.NewConflictError("booking reference already exists")
	}
	if err := o.repo.Save(ctx, b); err != nil {
		return "", err
	}
	return "pi_test_secret", nil
}

func (o *fakeOrchestrator) ConfirmBookingSaga(ctx context.Context, bookingID uuid.UUID, paymentIntentID string) error {
	b, err := o.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := b.Confirm(paymentIntentID); err != nil {
		return err
	}
	o.confirmed = append(o.confirmed, bookingID)
	return nil
}

func (o *fakeOrchestrator) CancelBookingSaga(ctx context.Context, bookingID uuid.UUID, reason string) error {
	b, err := o.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := b.Cancel(reason); err != nil {
		return err
	}
	o.cancelled[bookingID] = reason
	return nil
}

func (o *fakeOrchestrator) CompleteBookingSaga(ctx context.Context, bookingID uuid.UUID) error {
	b, err := o.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := b.Complete(); err != nil {
		return err
	}
	o.completed = append(o.completed, bookingID)
	return nil
}
