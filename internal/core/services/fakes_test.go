package services

import (
	"sort"
	"sync"
	"time"

	"clinicq/internal/adapters/persistence/models"
)

// In-memory repository fakes. They return copies so service-side mutations
// only land in the store through Update, mirroring the gorm repositories.

// ------------------------------------------------------------
// Config
// ------------------------------------------------------------

type fakeConfigRepo struct {
	mu          sync.Mutex
	hospitals   map[uint]models.Hospital
	configs     map[uint]models.HospitalConfig // by hospital ID
	departments map[uint]models.Department
	deptConfigs map[uint]models.DepartmentConfig // by department ID
	doctors     map[uint]models.Doctor
	patients    map[uint]models.Patient
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{
		hospitals:   make(map[uint]models.Hospital),
		configs:     make(map[uint]models.HospitalConfig),
		departments: make(map[uint]models.Department),
		deptConfigs: make(map[uint]models.DepartmentConfig),
		doctors:     make(map[uint]models.Doctor),
		patients:    make(map[uint]models.Patient),
	}
}

func (f *fakeConfigRepo) GetHospitalByID(id uint) (*models.Hospital, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.hospitals[id]; ok {
		return &h, nil
	}
	return nil, nil
}

func (f *fakeConfigRepo) ListHospitals() ([]models.Hospital, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Hospital, 0, len(f.hospitals))
	for _, h := range f.hospitals {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeConfigRepo) GetHospitalConfig(hospitalID uint) (*models.HospitalConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.configs[hospitalID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeConfigRepo) UpdateHospitalConfig(cfg *models.HospitalConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs[cfg.HospitalID] = *cfg
	return nil
}

func (f *fakeConfigRepo) GetDepartmentByID(id uint) (*models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.departments[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeConfigRepo) GetDepartmentConfig(hospitalID, departmentID uint) (*models.DepartmentConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.deptConfigs[departmentID]; ok && c.HospitalID == hospitalID {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeConfigRepo) UpsertDepartmentConfig(cfg *models.DepartmentConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deptConfigs[cfg.DepartmentID] = *cfg
	return nil
}

func (f *fakeConfigRepo) GetDoctorByID(id uint) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.doctors[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeConfigRepo) UpdateDoctorStatus(doctorID uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.doctors[doctorID]
	d.Status = status
	f.doctors[doctorID] = d
	return nil
}

func (f *fakeConfigRepo) GetPatientByID(id uint) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.patients[id]; ok {
		return &p, nil
	}
	return nil, nil
}

// ------------------------------------------------------------
// Visits
// ------------------------------------------------------------

type fakeVisitRepo struct {
	mu     sync.Mutex
	visits map[uint]models.Visit
	nextID uint
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{visits: make(map[uint]models.Visit), nextID: 1}
}

func (f *fakeVisitRepo) Create(visit *models.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	visit.ID = f.nextID
	f.nextID++
	f.visits[visit.ID] = *visit
	return nil
}

func (f *fakeVisitRepo) GetByID(id uint) (*models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.visits[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (f *fakeVisitRepo) GetByTokenCode(hospitalID uint, tokenCode string, since time.Time) (*models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Visit
	for id := range f.visits {
		v := f.visits[id]
		if v.HospitalID != hospitalID || v.TokenCode != tokenCode || v.CheckedInAt.Before(since) {
			continue
		}
		if best == nil || v.CheckedInAt.After(best.CheckedInAt) || (v.CheckedInAt.Equal(best.CheckedInAt) && v.ID > best.ID) {
			vv := v
			best = &vv
		}
	}
	return best, nil
}

func (f *fakeVisitRepo) GetActiveByPatientAndDoctor(patientID, doctorID uint) (*models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.visits {
		v := f.visits[id]
		if v.PatientID == patientID && v.DoctorID != nil && *v.DoctorID == doctorID && v.IsActive() {
			return &v, nil
		}
	}
	return nil, nil
}

func (f *fakeVisitRepo) GetActiveByPatientInDepartment(patientID, departmentID uint) (*models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.visits {
		v := f.visits[id]
		if v.PatientID == patientID && v.DepartmentID == departmentID && v.DoctorID == nil && v.IsActive() {
			return &v, nil
		}
	}
	return nil, nil
}

func (f *fakeVisitRepo) GetInProgressByDoctor(doctorID uint) (*models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.visits {
		v := f.visits[id]
		if v.DoctorID != nil && *v.DoctorID == doctorID && v.Status == models.VisitInProgress {
			return &v, nil
		}
	}
	return nil, nil
}

func (f *fakeVisitRepo) list(match func(models.Visit) bool) []models.Visit {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Visit
	for id := range f.visits {
		if match(f.visits[id]) {
			out = append(out, f.visits[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeVisitRepo) ListQueueByDoctor(doctorID uint) ([]models.Visit, error) {
	return f.list(func(v models.Visit) bool {
		return v.DoctorID != nil && *v.DoctorID == doctorID &&
			(v.Status == models.VisitWaiting || v.Status == models.VisitOnHold)
	}), nil
}

func (f *fakeVisitRepo) ListQueueByDepartment(departmentID uint) ([]models.Visit, error) {
	return f.list(func(v models.Visit) bool {
		return v.DepartmentID == departmentID &&
			(v.Status == models.VisitWaiting || v.Status == models.VisitOnHold)
	}), nil
}

func (f *fakeVisitRepo) ListActiveByDoctor(doctorID uint) ([]models.Visit, error) {
	return f.list(func(v models.Visit) bool {
		return v.DoctorID != nil && *v.DoctorID == doctorID && v.IsActive()
	}), nil
}

func (f *fakeVisitRepo) ListUnresolvedByHospital(hospitalID uint, checkedInBefore time.Time) ([]models.Visit, error) {
	return f.list(func(v models.Visit) bool {
		return v.HospitalID == hospitalID && v.CheckedInAt.Before(checkedInBefore) && v.IsActive()
	}), nil
}

func (f *fakeVisitRepo) CountQueueByDoctor(doctorID uint) (int64, error) {
	visits, _ := f.ListQueueByDoctor(doctorID)
	return int64(len(visits)), nil
}

func (f *fakeVisitRepo) CountQueueByDepartment(departmentID uint) (int64, error) {
	visits, _ := f.ListQueueByDepartment(departmentID)
	return int64(len(visits)), nil
}

func (f *fakeVisitRepo) CountTodayByDoctor(doctorID uint, dayStart time.Time) (int64, error) {
	visits := f.list(func(v models.Visit) bool {
		return v.DoctorID != nil && *v.DoctorID == doctorID && !v.CheckedInAt.Before(dayStart)
	})
	return int64(len(visits)), nil
}

func (f *fakeVisitRepo) Update(visit *models.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits[visit.ID] = *visit
	return nil
}

func (f *fakeVisitRepo) ReplaceWithCarryover(old *models.Visit, successor *models.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits[old.ID] = *old
	successor.ID = f.nextID
	f.nextID++
	f.visits[successor.ID] = *successor
	return nil
}

// ------------------------------------------------------------
// Token sequences
// ------------------------------------------------------------

type fakeTokenRepo struct {
	mu        sync.Mutex
	sequences map[string]models.TokenSequence
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{sequences: make(map[string]models.TokenSequence)}
}

func (f *fakeTokenRepo) Allocate(scopeKey string, periodStart time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seq, ok := f.sequences[scopeKey]
	if !ok || periodStart.After(seq.PeriodStart) {
		seq = models.TokenSequence{ScopeKey: scopeKey, PeriodStart: periodStart, LastNumber: 1}
		f.sequences[scopeKey] = seq
		return 1, nil
	}
	seq.LastNumber++
	f.sequences[scopeKey] = seq
	return seq.LastNumber, nil
}

func (f *fakeTokenRepo) Peek(scopeKey string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sequences[scopeKey].LastNumber, nil
}

// ------------------------------------------------------------
// History
// ------------------------------------------------------------

type fakeHistoryRepo struct {
	mu       sync.Mutex
	records  map[uint]models.VisitHistory // keyed by visit ID
	failNext error                        // returned by the next Create, then cleared
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{records: make(map[uint]models.VisitHistory)}
}

func (f *fakeHistoryRepo) Create(record *models.VisitHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	if _, exists := f.records[record.VisitID]; exists {
		return nil
	}
	record.ID = uint(len(f.records) + 1)
	f.records[record.VisitID] = *record
	return nil
}

func (f *fakeHistoryRepo) ExistsForVisit(visitID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[visitID]
	return ok, nil
}

func (f *fakeHistoryRepo) List(hospitalID uint, doctorID *uint, from, to time.Time, page, limit int) ([]models.VisitHistory, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.VisitHistory
	for _, r := range f.records {
		if r.HospitalID != hospitalID {
			continue
		}
		if doctorID != nil && (r.DoctorID == nil || *r.DoctorID != *doctorID) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ------------------------------------------------------------
// Appointments
// ------------------------------------------------------------

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uint]models.Appointment
	nextID       uint
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uint]models.Appointment), nextID: 1}
}

func (f *fakeAppointmentRepo) Create(a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = f.nextID
	f.nextID++
	f.appointments[a.ID] = *a
	return nil
}

func (f *fakeAppointmentRepo) GetByID(id uint) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.appointments[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) ListByPatient(patientID uint) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeAppointmentRepo) ListOpenByDoctorBetween(doctorID uint, from, to time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.DoctorID == nil || *a.DoctorID != doctorID {
			continue
		}
		if a.Status != models.AppointmentPending && a.Status != models.AppointmentConfirmed {
			continue
		}
		if a.ScheduledAt.After(from) && a.ScheduledAt.Before(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.appointments[id]
	a.Status = status
	f.appointments[id] = a
	return nil
}

func (f *fakeAppointmentRepo) ListOverdue(cutoff time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appointments {
		if (a.Status == models.AppointmentPending || a.Status == models.AppointmentConfirmed) &&
			a.ScheduledAt.Before(cutoff) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ------------------------------------------------------------
// Event capture
// ------------------------------------------------------------

type capturePublisher struct {
	mu     sync.Mutex
	events []QueueEvent
}

func (p *capturePublisher) Publish(event QueueEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) all() []QueueEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]QueueEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *capturePublisher) last() *QueueEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	e := p.events[len(p.events)-1]
	return &e
}

// ------------------------------------------------------------
// Test environment
// ------------------------------------------------------------

type testEnv struct {
	configs      *fakeConfigRepo
	visits       *fakeVisitRepo
	tokens       *fakeTokenRepo
	history      *fakeHistoryRepo
	appointments *fakeAppointmentRepo
	publisher    *capturePublisher

	policy       *PolicyService
	tokenService *TokenService
	historySvc   *HistoryService
	queue        *QueueService
	clock        time.Time
}

// newTestEnv wires the services against fakes with one hospital, one
// department and one active doctor, clock fixed at a Tuesday 10:00 local.
func newTestEnv() *testEnv {
	env := &testEnv{
		configs:      newFakeConfigRepo(),
		visits:       newFakeVisitRepo(),
		tokens:       newFakeTokenRepo(),
		history:      newFakeHistoryRepo(),
		appointments: newFakeAppointmentRepo(),
		publisher:    &capturePublisher{},
	}

	env.configs.hospitals[1] = models.Hospital{ID: 1, Code: "DEMO", Name: "Demo Clinic", Timezone: "UTC", IsActive: true}
	env.configs.configs[1] = models.HospitalConfig{
		ID:                  1,
		HospitalID:          1,
		BookingMode:         models.BookingBoth,
		ConsultationMinutes: 15,
		BufferMinutes:       5,
		ArrivalWindowMins:   15,
		NoShowGraceMins:     30,
		TokenResetFrequency: models.ResetDaily,
		AutoReassignOnLeave: true,
	}
	env.configs.departments[10] = models.Department{ID: 10, HospitalID: 1, Code: "GEN", Name: "General Medicine", IsActive: true}
	env.configs.doctors[100] = models.Doctor{ID: 100, HospitalID: 1, DepartmentID: 10, FullName: "Dr. A", Status: models.DoctorActive}
	env.configs.patients[1000] = models.Patient{ID: 1000, HospitalID: 1, MRN: "MRN-1", FullName: "Patient One"}
	env.configs.patients[1001] = models.Patient{ID: 1001, HospitalID: 1, MRN: "MRN-2", FullName: "Patient Two"}
	env.configs.patients[1002] = models.Patient{ID: 1002, HospitalID: 1, MRN: "MRN-3", FullName: "Patient Three"}

	env.clock = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	env.policy = NewPolicyService(env.configs)
	env.tokenService = NewTokenService(env.tokens)
	env.tokenService.now = env.now
	env.historySvc = NewHistoryService(env.history)
	env.historySvc.now = env.now
	env.queue = NewQueueService(env.visits, env.configs, env.policy, env.tokenService, env.historySvc, env.appointments, env.publisher)
	env.queue.now = env.now

	return env
}

func (e *testEnv) now() time.Time {
	return e.clock
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func uintPtr(v uint) *uint { return &v }
