package event

import (
	"context"
	"skillbridge/domain"
	"skillbridge/persistence"
	"skillbridge/session"
	"skillbridge/testinfra"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

var (
	testDatabase *testinfra.TestDatabase
)

func setup(t *testing.T) {
	testDatabase = testinfra.StartTestDatabase("skillbridge")
	assert.Nil(t, testDatabase.Migrate(&EventRecord{}))
	persistence.ActiveDataSourceManager = testDatabase.DS
}

func teardown(t *testing.T) {
	EventHandlers = nil
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

func createTestEvent(t *testing.T, category EventCategory) *EventRecord {
	project := &domain.Project{ID: 100, Title: "p100", Status: "open", OwnerID: 1, RequiredSkills: domain.Skills{"go"}}
	r, err := CreateProjectEvent(category, project, &session.Identity{ID: 1, Name: "owner"},
		persistence.ActiveDataSourceManager.GormDB(context.TODO()), WithRivals([]types.ID{7}))
	assert.Nil(t, err)
	return r
}

func loadEvent(t *testing.T, id types.ID) EventRecord {
	r := EventRecord{}
	assert.Nil(t, persistence.ActiveDataSourceManager.GormDB(context.TODO()).Where("id = ?", id).First(&r).Error)
	return r
}

func TestEventPersistCreate(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to persist event with json columns", func(t *testing.T) {
		setup(t)
		defer teardown(t)

		r := createTestEvent(t, EventCategoryProjectCreated)
		loaded := loadEvent(t, r.ID)
		Expect(loaded.EventCategory).To(Equal(EventCategoryProjectCreated))
		Expect(loaded.Project.Title).To(Equal("p100"))
		Expect(loaded.Project.RequiredSkills).To(Equal(domain.Skills{"go"}))
		Expect(loaded.Rivals).To(Equal(IDs{7}))
		Expect(loaded.HandledBy).To(Equal(HandlerNames{}))
		Expect(loaded.Synced).To(BeFalse())
	})
}

func TestDispatcher(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should mark record synced when all handlers succeed", func(t *testing.T) {
		setup(t)
		defer teardown(t)

		var handled []types.ID
		RegisterHandler("recorder", func(e *EventRecord) *EventHandleResult {
			handled = append(handled, e.ID)
			return &EventHandleResult{Success: true}
		})

		r1 := createTestEvent(t, EventCategoryProjectCreated)
		r2 := createTestEvent(t, EventCategoryStatusChanged)

		d := NewDispatcher(DispatcherConfig{BatchSize: 10})
		Expect(d.ProcessPending(context.TODO())).To(Equal(2))
		Expect(handled).To(Equal([]types.ID{r1.ID, r2.ID}))
		Expect(loadEvent(t, r1.ID).Synced).To(BeTrue())
		Expect(loadEvent(t, r1.ID).HandledBy).To(Equal(HandlerNames{"recorder"}))

		Expect(d.ProcessPending(context.TODO())).To(Equal(0))
		Expect(handled).To(HaveLen(2))
	})

	t.Run("should retry only failed handlers with backoff then give up", func(t *testing.T) {
		setup(t)
		defer teardown(t)

		okCalls, failCalls := 0, 0
		RegisterHandler("ok", func(e *EventRecord) *EventHandleResult {
			okCalls++
			return &EventHandleResult{Success: true}
		})
		RegisterHandler("flaky", func(e *EventRecord) *EventHandleResult {
			failCalls++
			return &EventHandleResult{Success: false, Message: "down"}
		})

		r := createTestEvent(t, EventCategoryProjectCreated)
		now := time.Now()
		d := NewDispatcher(DispatcherConfig{BatchSize: 10, MaxRetries: 2, RetryBackoff: time.Minute})
		d.now = func() time.Time { return now }

		Expect(d.ProcessPending(context.TODO())).To(Equal(0))
		loaded := loadEvent(t, r.ID)
		Expect(loaded.Synced).To(BeFalse())
		Expect(loaded.Failed).To(BeFalse())
		Expect(loaded.RetryCount).To(Equal(1))
		Expect(loaded.HandledBy).To(Equal(HandlerNames{"ok"}))
		Expect(loaded.NextRetryTime.Time().After(now)).To(BeTrue())

		// not due yet
		Expect(d.ProcessPending(context.TODO())).To(Equal(0))
		Expect(failCalls).To(Equal(1))

		now = now.Add(2 * time.Minute)
		Expect(d.ProcessPending(context.TODO())).To(Equal(0))
		Expect(okCalls).To(Equal(1))
		Expect(failCalls).To(Equal(2))
		loaded = loadEvent(t, r.ID)
		Expect(loaded.Failed).To(BeTrue())
		Expect(loaded.RetryCount).To(Equal(2))

		now = now.Add(time.Hour)
		Expect(d.ProcessPending(context.TODO())).To(Equal(0))
		Expect(failCalls).To(Equal(2))
	})

	t.Run("should wake loop on notify and stop with context", func(t *testing.T) {
		setup(t)
		defer teardown(t)

		done := make(chan types.ID, 1)
		RegisterHandler("signal", func(e *EventRecord) *EventHandleResult {
			done <- e.ID
			return &EventHandleResult{Success: true}
		})

		d := NewDispatcher(DispatcherConfig{Interval: time.Hour})
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			d.Start(ctx)
			close(stopped)
		}()

		r := createTestEvent(t, EventCategoryProjectCreated)
		d.Notify(r)
		d.Notify(r)
		Eventually(done, 5*time.Second).Should(Receive(Equal(r.ID)))

		cancel()
		Eventually(stopped, 5*time.Second).Should(BeClosed())
	})
}
