package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/validator"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"staybook/pkg/notify"
	"sync"
	"time"
)

const (
	propertyA = "65a1b2c3d4e5f6a7b8c9d0a1"
	propertyB = "65a1b2c3d4e5f6a7b8c9d0a2"

	roomX = "65a1b2c3d4e5f6a7b8c9d0e1"
	roomY = "65a1b2c3d4e5f6a7b8c9d0e2"
	roomZ = "65a1b2c3d4e5f6a7b8c9d0e3"
)

var testNow = time.Date(2030, 7, 1, 9, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2030, 7, d, 0, 0, 0, 0, time.UTC)
}

// --- bookings ---

type fakeBookingRepo struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	seq      int
	bookings map[string]*model.Booking

	createErr     error
	findErr       error
	findStaleErr  error
	deleteErrs    map[string]error
	overlapCalls  int
	staleQueries  int
	txCalls       int
	beforeTx      func(call int) error
	onTransition  func(id string)
	transitionErr error
}

var _ repository.BookingRepository = (*fakeBookingRepo)(nil)

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*model.Booking{}, deleteErrs: map[string]error{}}
}

func clone(b *model.Booking) *model.Booking {
	c := *b
	c.Rooms = slices.Clone(b.Rooms)
	return &c
}

// seed stores b as-is and returns its id.
func (r *fakeBookingRepo) seed(b *model.Booking) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if b.ID == "" {
		b.ID = fmt.Sprintf("%024x", r.seq)
	}
	r.bookings[b.ID] = clone(b)
	return b.ID
}

func (r *fakeBookingRepo) get(id string) *model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[id]; ok {
		return clone(b)
	}
	return nil
}

func (r *fakeBookingRepo) Create(_ context.Context, b *model.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	b.ID = fmt.Sprintf("%024x", r.seq)
	r.bookings[b.ID] = clone(b)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id string) (*model.Booking, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return clone(b), nil
}

func (r *fakeBookingRepo) matching(filter repository.BookingFilter) []*model.Booking {
	var out []*model.Booking
	for _, b := range r.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.PropertyID != "" && b.PropertyID != filter.PropertyID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeBookingRepo) Find(_ context.Context, filter repository.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(filter)
	if int(offset) >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeBookingRepo) Count(_ context.Context, filter repository.BookingFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, roomIDs []string, checkIn, checkOut time.Time) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlapCalls++
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.Status == model.BookingStatusCancelled || !b.Overlaps(checkIn, checkOut) {
			continue
		}
		for _, id := range roomIDs {
			if b.QuantityFor(id) > 0 {
				out = append(out, clone(b))
				break
			}
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) TransitionStatus(_ context.Context, id, from, to, token string) error {
	if r.onTransition != nil {
		hook := r.onTransition
		r.onTransition = nil
		hook(id)
	}
	if r.transitionErr != nil {
		return r.transitionErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from || (token != "" && b.ConfirmationToken != token) {
		return bookingserrors.ErrStatusChanged
	}
	b.Status = to
	if from == model.BookingStatusPending {
		b.ConfirmationToken = ""
	}
	return nil
}

func (r *fakeBookingRepo) setStatus(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[id].Status = status
}

func (r *fakeBookingRepo) MarkPaid(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.IsPaid = true
	return nil
}

func (r *fakeBookingRepo) FindStalePending(_ context.Context, createdBefore time.Time, after *repository.StaleCursor, limit int) ([]*model.Booking, error) {
	if r.findStaleErr != nil {
		return nil, r.findStaleErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staleQueries++
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.Status != model.BookingStatusPending || b.CreatedAt.After(createdBefore) {
			continue
		}
		if after != nil && !staleAfter(b, after) {
			continue
		}
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func staleAfter(b *model.Booking, c *repository.StaleCursor) bool {
	if !b.CreatedAt.Equal(c.CreatedAt) {
		return b.CreatedAt.After(c.CreatedAt)
	}
	return b.ID > c.ID
}

func (r *fakeBookingRepo) DeleteIfPending(_ context.Context, id string) (bool, error) {
	if err := r.deleteErrs[id]; err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != model.BookingStatusPending {
		return false, nil
	}
	delete(r.bookings, id)
	return true, nil
}

// ExecuteTransaction serializes callers, standing in for the write
// conflict on room guards that serializes real transactions.
// beforeTx, when set, runs first and can fail the attempt the way an
// exhausted write conflict does.
func (r *fakeBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.txCalls++
	if r.beforeTx != nil {
		if err := r.beforeTx(r.txCalls); err != nil {
			return err
		}
	}
	return fn(ctx)
}

// --- rooms ---

type fakeRoomRepo struct {
	rooms map[string]*model.Room
	err   error
}

func newFakeRoomRepo(rooms ...*model.Room) *fakeRoomRepo {
	r := &fakeRoomRepo{rooms: map[string]*model.Room{}}
	for _, room := range rooms {
		r.rooms[room.ID] = room
	}
	return r
}

func (r *fakeRoomRepo) FindByIDs(_ context.Context, ids []string) ([]*model.Room, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*model.Room
	for _, id := range ids {
		if room, ok := r.rooms[id]; ok {
			c := *room
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) FindByProperty(_ context.Context, propertyID string) ([]*model.Room, error) {
	var out []*model.Room
	for _, room := range r.rooms {
		if room.PropertyID == propertyID {
			c := *room
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- guards ---

type fakeGuardRepo struct {
	mu    sync.Mutex
	bumps map[string]int
	err   error
}

func (g *fakeGuardRepo) Bump(_ context.Context, roomIDs []string) error {
	if g.err != nil {
		return g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.bumps == nil {
		g.bumps = map[string]int{}
	}
	for _, id := range roomIDs {
		g.bumps[id]++
	}
	return nil
}

// --- temp locks ---

type fakeLockRepo struct {
	mu        sync.Mutex
	seq       int
	locks     []*model.TempLock
	createErr error
	deleteErr error
}

func (r *fakeLockRepo) Create(_ context.Context, lock *model.TempLock) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	lock.ID = fmt.Sprintf("lock-%d", r.seq)
	c := *lock
	r.locks = append(r.locks, &c)
	return nil
}

func (r *fakeLockRepo) FindActive(_ context.Context, roomID string, now time.Time) (*model.TempLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.TempLock
	for _, l := range r.locks {
		if l.RoomID == roomID && l.Active(now) && (best == nil || l.ExpiresAt.After(best.ExpiresAt)) {
			c := *l
			best = &c
		}
	}
	return best, nil
}

func (r *fakeLockRepo) Delete(_ context.Context, lock *model.TempLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = slices.DeleteFunc(r.locks, func(l *model.TempLock) bool { return l.ID == lock.ID })
	return nil
}

func (r *fakeLockRepo) DeleteByRoom(_ context.Context, roomID string) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.locks)
	r.locks = slices.DeleteFunc(r.locks, func(l *model.TempLock) bool { return l.RoomID == roomID })
	return int64(before - len(r.locks)), nil
}

func (r *fakeLockRepo) count(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.locks {
		if l.RoomID == roomID {
			n++
		}
	}
	return n
}

// --- discounts ---

type fakeDiscountRepo struct {
	discounts map[string]*model.Discount
	err       error
	purged    int64
}

func (r *fakeDiscountRepo) FindByCode(_ context.Context, code string) (*model.Discount, error) {
	if r.err != nil {
		return nil, r.err
	}
	d, ok := r.discounts[code]
	if !ok {
		return nil, bookingserrors.ErrDiscountNotFound
	}
	c := *d
	return &c, nil
}

func (r *fakeDiscountRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for code, d := range r.discounts {
		if d.Expired(now) {
			delete(r.discounts, code)
			n++
		}
	}
	r.purged += n
	return n, nil
}

type fakeUsageRepo struct {
	mu   sync.Mutex
	used map[string]bool
}

func (r *fakeUsageRepo) Exists(_ context.Context, userID, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used[userID+"|"+code], nil
}

func (r *fakeUsageRepo) Create(_ context.Context, usage *model.DiscountUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used == nil {
		r.used = map[string]bool{}
	}
	key := usage.UserID + "|" + usage.DiscountCode
	if r.used[key] {
		return bookingserrors.ErrDuplicateUsage
	}
	r.used[key] = true
	return nil
}

// --- notifier ---

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []notify.Notification
	err   error
	calls int
}

func (n *recordingNotifier) Send(_ context.Context, note notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, note)
	return nil
}

func (n *recordingNotifier) subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		out = append(out, s.Subject)
	}
	return out
}

// --- harness ---

type harness struct {
	bookings  *fakeBookingRepo
	rooms     *fakeRoomRepo
	guards    *fakeGuardRepo
	locks     *fakeLockRepo
	discounts *fakeDiscountRepo
	usages    *fakeUsageRepo
	notifier  *recordingNotifier

	lockManager *TempLockManager
	service     *bookingService
	lifecycle   *lifecycleService
	discountSvc *discountService
}

func defaultRooms() []*model.Room {
	return []*model.Room{
		{ID: roomX, PropertyID: propertyA, Name: "Deluxe", Price: 100, TotalRoom: 2, IsAvailable: true},
		{ID: roomY, PropertyID: propertyA, Name: "Suite", Price: 250.5, TotalRoom: 1, IsAvailable: true},
		{ID: roomZ, PropertyID: propertyB, Name: "Standard", Price: 60, TotalRoom: 5, IsAvailable: true},
	}
}

func newHarness(rooms ...*model.Room) *harness {
	if len(rooms) == 0 {
		rooms = defaultRooms()
	}

	log := logger.Discard()
	cfg := &config.Config{
		Log:           log,
		LockTTL:       15 * time.Minute,
		PublicBaseURL: "http://api.test",
	}

	h := &harness{
		bookings:  newFakeBookingRepo(),
		rooms:     newFakeRoomRepo(rooms...),
		guards:    &fakeGuardRepo{},
		locks:     &fakeLockRepo{},
		discounts: &fakeDiscountRepo{discounts: map[string]*model.Discount{}},
		usages:    &fakeUsageRepo{},
		notifier:  &recordingNotifier{},
	}

	v := validator.NewBookingValidator(log)
	clock := func() time.Time { return testNow }

	h.lockManager = NewTempLockManager(h.locks, v, cfg.LockTTL, nil, log)
	h.lockManager.now = clock

	h.discountSvc = NewDiscountService(h.discounts, h.usages, v, nil, log).(*discountService)
	h.discountSvc.now = clock

	deps := Dependencies{
		Bookings:   h.bookings,
		Rooms:      h.rooms,
		Guards:     h.guards,
		Calculator: NewAvailabilityCalculator(h.bookings, nil, log),
		Locks:      h.lockManager,
		Discounts:  h.discountSvc,
		Notifier:   h.notifier,
		Validator:  v,
		Config:     cfg,
	}

	h.service = newBookingService(deps)
	h.service.now = clock
	h.lifecycle = newLifecycleService(deps)
	h.lifecycle.now = clock

	return h
}

func request(checkIn, checkOut time.Time, lines ...model.RoomRequest) *model.BookingRequest {
	return &model.BookingRequest{
		Rooms:         lines,
		UserID:        "user-1",
		GuestName:     "  Lan   Pham ",
		Email:         "Lan@Example.com",
		Phone:         "0912 345 678",
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PaymentMethod: "card",
	}
}

func line(roomID string, qty int) model.RoomRequest {
	return model.RoomRequest{RoomID: roomID, Quantity: qty}
}

func existing(status string, checkIn, checkOut time.Time, lines ...model.BookedRoom) *model.Booking {
	return &model.Booking{
		PropertyID:        propertyA,
		Rooms:             lines,
		UserID:            "someone",
		Email:             "someone@example.com",
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		Status:            status,
		ConfirmationToken: "token-1",
		CreatedAt:         testNow.Add(-time.Hour),
	}
}

func booked(roomID string, qty int) model.BookedRoom {
	return model.BookedRoom{RoomID: roomID, Quantity: qty}
}
