package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/veridian/gatepass/internal/domain"
	"github.com/veridian/gatepass/internal/push"
)

// ---------- Mocks ----------

type mockVisitorRepo struct {
	nextID     int
	visitors   map[string]*domain.Visitor
	lastFilter domain.VisitorFilter
}

func newMockVisitorRepo() *mockVisitorRepo {
	return &mockVisitorRepo{
		nextID:   1,
		visitors: make(map[string]*domain.Visitor),
	}
}

func (m *mockVisitorRepo) Create(_ context.Context, communityID string, hostID int64, req *domain.CreateVisitorReq, visitorType domain.VisitorType) (*domain.Visitor, error) {
	id := fmt.Sprintf("visitor-%d", m.nextID)
	m.nextID++

	v := &domain.Visitor{
		ID:          id,
		CommunityID: communityID,
		HostID:      hostID,
		Name:        req.Name,
		Contact:     req.Contact,
		VehicleNo:   req.VehicleNo,
		Type:        visitorType,
		Notes:       req.Notes,
		VisitDate:   req.VisitDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.visitors[id] = v

	copy := *v
	return &copy, nil
}

func (m *mockVisitorRepo) get(communityID, id string) *domain.Visitor {
	v, ok := m.visitors[id]
	if !ok || v.CommunityID != communityID {
		return nil
	}
	return v
}

func (m *mockVisitorRepo) GetByID(_ context.Context, communityID, id string) (*domain.Visitor, error) {
	v := m.get(communityID, id)
	if v == nil {
		return nil, nil
	}
	copy := *v
	return &copy, nil
}

func (m *mockVisitorRepo) SetCheckIn(_ context.Context, communityID, id string, at time.Time) (*domain.Visitor, error) {
	v := m.get(communityID, id)
	if v == nil {
		return nil, nil
	}
	v.CheckInAt = &at
	v.UpdatedAt = at
	copy := *v
	return &copy, nil
}

func (m *mockVisitorRepo) SetCheckOut(_ context.Context, communityID, id string, at time.Time) (*domain.Visitor, error) {
	v := m.get(communityID, id)
	if v == nil {
		return nil, nil
	}
	v.CheckOutAt = &at
	v.UpdatedAt = at
	copy := *v
	return &copy, nil
}

func (m *mockVisitorRepo) ResetTimestamps(_ context.Context, communityID, id string) (*domain.Visitor, error) {
	v := m.get(communityID, id)
	if v == nil {
		return nil, nil
	}
	v.CheckInAt = nil
	v.CheckOutAt = nil
	copy := *v
	return &copy, nil
}

func (m *mockVisitorRepo) List(_ context.Context, communityID string, filter domain.VisitorFilter) ([]domain.Visitor, error) {
	m.lastFilter = filter

	var result []domain.Visitor
	for _, v := range m.visitors {
		if v.CommunityID != communityID {
			continue
		}
		if filter.From != nil && v.VisitDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && v.VisitDate.After(*filter.To) {
			continue
		}
		if filter.Status != nil && v.Status() != *filter.Status {
			continue
		}
		if filter.Type != nil && v.Type != *filter.Type {
			continue
		}
		result = append(result, *v)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].VisitDate.After(result[j].VisitDate)
	})
	return result, nil
}

func (m *mockVisitorRepo) CountByRange(_ context.Context, communityID string, from, to time.Time) (*domain.VisitorStats, error) {
	stats := &domain.VisitorStats{TypeBreakdown: make(map[domain.VisitorType]int)}
	for _, v := range m.visitors {
		if v.CommunityID != communityID {
			continue
		}
		if v.VisitDate.Before(from) || !v.VisitDate.Before(to) {
			continue
		}
		stats.Total++
		switch v.Status() {
		case domain.VisitorPending:
			stats.Pending++
		case domain.VisitorCheckedIn:
			stats.CheckedIn++
		case domain.VisitorCheckedOut:
			stats.CheckedOut++
		}
		stats.TypeBreakdown[v.Type]++
	}
	return stats, nil
}

type mockUserRepo struct {
	users map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, communityID string, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok || u.CommunityID != communityID {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) SavePushToken(_ context.Context, userID int64, token string) error {
	u, ok := m.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PushToken = &token
	return nil
}

func (m *mockUserRepo) ClearPushToken(_ context.Context, userID int64) error {
	if u, ok := m.users[userID]; ok {
		u.PushToken = nil
	}
	return nil
}

type sentNotification struct {
	Token        string
	Notification push.Notification
}

type mockNotifier struct {
	sent chan sentNotification
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{sent: make(chan sentNotification, 16)}
}

func (m *mockNotifier) SendOne(_ context.Context, token string, n push.Notification) {
	m.sent <- sentNotification{Token: token, Notification: n}
}

func (m *mockNotifier) SendBulk(_ context.Context, tokens []string, n push.Notification) {
	for _, token := range tokens {
		m.sent <- sentNotification{Token: token, Notification: n}
	}
}

func (m *mockNotifier) wait(timeout time.Duration) (sentNotification, bool) {
	select {
	case n := <-m.sent:
		return n, true
	case <-time.After(timeout):
		return sentNotification{}, false
	}
}

func (m *mockNotifier) quiet(timeout time.Duration) bool {
	select {
	case <-m.sent:
		return false
	case <-time.After(timeout):
		return true
	}
}

type sentMail struct {
	To       string
	EntityID string
}

type mockMailer struct {
	passes  chan sentMail
	pickups chan sentMail
	sendErr error
}

func newMockMailer() *mockMailer {
	return &mockMailer{
		passes:  make(chan sentMail, 16),
		pickups: make(chan sentMail, 16),
	}
}

func (m *mockMailer) SendVisitorPass(_ context.Context, toEmail, _ string, visitor *domain.Visitor, _ []byte, _ string) error {
	m.passes <- sentMail{To: toEmail, EntityID: visitor.ID}
	return m.sendErr
}

func (m *mockMailer) SendPackagePicked(_ context.Context, toEmail, _ string, pkg *domain.Package) error {
	m.pickups <- sentMail{To: toEmail, EntityID: fmt.Sprintf("%d", pkg.ID)}
	return m.sendErr
}

type mockBookingRepo struct {
	bookings []domain.Booking
	lastFrom time.Time
	lastTo   time.Time
}

func (m *mockBookingRepo) ListConfirmedStartingBetween(_ context.Context, from, to time.Time) ([]domain.Booking, error) {
	m.lastFrom, m.lastTo = from, to

	var result []domain.Booking
	for _, b := range m.bookings {
		if b.Status != domain.BookingConfirmed {
			continue
		}
		if b.StartsAt.Before(from) || b.StartsAt.After(to) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

type mockPackageRepo struct {
	nextID   int64
	packages map[int64]*domain.Package
}

func newMockPackageRepo() *mockPackageRepo {
	return &mockPackageRepo{nextID: 1, packages: make(map[int64]*domain.Package)}
}

func (m *mockPackageRepo) Create(_ context.Context, communityID string, req *domain.CreatePackageReq) (*domain.Package, error) {
	id := m.nextID
	m.nextID++

	p := &domain.Package{
		ID:          id,
		CommunityID: communityID,
		UserID:      req.UserID,
		Name:        req.Name,
		Image:       req.Image,
		Status:      domain.PackagePending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.packages[id] = p

	copy := *p
	return &copy, nil
}

func (m *mockPackageRepo) GetByID(_ context.Context, communityID string, id int64) (*domain.Package, error) {
	p, ok := m.packages[id]
	if !ok || p.CommunityID != communityID {
		return nil, nil
	}
	copy := *p
	return &copy, nil
}

func (m *mockPackageRepo) ListByUser(_ context.Context, communityID string, userID int64) ([]domain.Package, error) {
	var result []domain.Package
	for _, p := range m.packages {
		if p.CommunityID == communityID && p.UserID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPackageRepo) MarkPicked(_ context.Context, communityID string, id int64) (*domain.Package, error) {
	p, ok := m.packages[id]
	if !ok || p.CommunityID != communityID || p.Status != domain.PackagePending {
		return nil, nil
	}
	p.Status = domain.PackagePicked
	p.UpdatedAt = time.Now()
	copy := *p
	return &copy, nil
}
