package main

import (
	"context"
	"skillbridge/domain"
	"skillbridge/event"
	"skillbridge/persistence"
	"skillbridge/testinfra"
	"strings"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestMigrateSchema(t *testing.T) {
	RegisterTestingT(t)

	testDatabase := testinfra.StartTestDatabase("skillbridge")
	defer testinfra.StopTestDatabase(testDatabase)
	db := testDatabase.DS.GormDB(context.Background())

	t.Run("should migrate every model repeatedly", func(t *testing.T) {
		Expect(migrateSchema(db)).To(Succeed())
		Expect(migrateSchema(db)).To(Succeed())
	})

	t.Run("should keep project indexes off the event snapshot column", func(t *testing.T) {
		if testDatabase.DS.DatabaseConfig.DriverType != persistence.DriverSqlite {
			t.Skip("index catalog query is sqlite specific")
		}
		var names []string
		Expect(db.Raw("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'events'").
			Pluck("name", &names).Error).To(BeNil())
		for _, name := range names {
			Expect(name).ToNot(HavePrefix("idx_project_"))
		}
	})

	t.Run("should store project snapshots with string ids", func(t *testing.T) {
		bigID := types.ID(1<<60 + 7)
		record := event.EventRecord{ID: 1, Event: event.Event{
			SourceType: event.SourceTypeProject, SourceId: bigID, EventCategory: event.EventCategoryProjectCreated,
			Project: event.ProjectSnapshot{Project: domain.Project{ID: bigID, OwnerID: 3, Title: "landing page",
				RequiredSkills: domain.Skills{"go"}}},
		}}
		Expect(db.Create(&record).Error).To(BeNil())

		var raw []string
		Expect(db.Table("events").Where("id = ?", 1).Pluck("project", &raw).Error).To(BeNil())
		Expect(raw).To(HaveLen(1))
		Expect(strings.Contains(raw[0], `"id":"`+bigID.String()+`"`)).To(BeTrue(), raw[0])

		loaded := event.EventRecord{}
		Expect(db.First(&loaded, 1).Error).To(BeNil())
		Expect(loaded.Project.ID).To(Equal(bigID))
		Expect(loaded.Project.Title).To(Equal("landing page"))
		Expect(loaded.Project.RequiredSkills).To(Equal(domain.Skills{"go"}))
	})
}
