package account_test

import (
	"context"
	"skillbridge/account"
	"skillbridge/authority"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"skillbridge/persistence"
	"skillbridge/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("accounts", func() {
	var (
		testDatabase *testinfra.TestDatabase
		admin        = testinfra.BuildSession(1, authority.RoleAdmin)
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartTestDatabase("skillbridge")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(&account.User{}).Error).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	Describe("DisplayName", func() {
		It("should be able to compute display name", func() {
			Expect(account.User{Name: "test", Nickname: "Test"}.DisplayName()).To(Equal("Test"))
			Expect(account.User{Name: "test"}.DisplayName()).To(Equal("test"))
			Expect(account.UserInfo{Name: "test", Nickname: "Test"}.DisplayName()).To(Equal("Test"))
			Expect(account.UserInfo{Name: "test"}.DisplayName()).To(Equal("test"))
		})
	})

	Describe("CreateUser", func() {
		It("should be blocked when user lack of permission", func() {
			u, err := account.CreateUser(&account.UserCreation{Name: "test", Role: authority.RoleStudent},
				testinfra.BuildSession(2, authority.RoleTeacher))
			Expect(err).To(Equal(bizerror.ErrForbidden))
			Expect(u).To(BeNil())
		})

		It("should be able to create users with normalized skills", func() {
			u, err := account.CreateUser(&account.UserCreation{ID: 20, Name: "ann", Role: authority.RoleStudent,
				Skills: []string{"Go", " sql", "go"}, BasePrice: 600, OpenToWork: true}, admin)
			Expect(err).To(BeNil())
			Expect(u.ID).To(Equal(types.ID(20)))

			loaded, err := account.DetailUser(20, admin)
			Expect(err).To(BeNil())
			Expect(loaded.Name).To(Equal("ann"))
			Expect(loaded.Role).To(Equal(authority.RoleStudent))
			Expect(loaded.Skills).To(Equal(domain.Skills{"go", "sql"}))
			Expect(loaded.BasePrice).To(Equal(int64(600)))
			Expect(loaded.OpenToWork).To(BeTrue())
			Expect(loaded.CreateTime.IsZero()).To(BeFalse())
		})

		It("should generate id when absent", func() {
			u, err := account.CreateUser(&account.UserCreation{Name: "bob", Role: authority.RoleTeacher}, admin)
			Expect(err).To(BeNil())
			Expect(u.ID).ToNot(BeZero())
		})
	})

	Describe("DetailUser", func() {
		It("should return not found for unknown user", func() {
			u, err := account.DetailUser(404, admin)
			Expect(u).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrUserNotFound))
		})
	})

	Describe("UpdateProfile", func() {
		BeforeEach(func() {
			_, err := account.CreateUser(&account.UserCreation{ID: 30, Name: "cat", Role: authority.RoleStudent,
				Skills: []string{"go"}, BasePrice: 100}, admin)
			Expect(err).To(BeNil())
		})

		It("should be blocked for other users", func() {
			nickname := "x"
			u, err := account.UpdateProfile(30, &account.ProfileUpdating{Nickname: &nickname}, testinfra.BuildSession(31, authority.RoleStudent))
			Expect(u).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})

		It("should update only present fields", func() {
			price := int64(0)
			open := true
			skills := []string{"Python"}
			u, err := account.UpdateProfile(30, &account.ProfileUpdating{BasePrice: &price, OpenToWork: &open, Skills: &skills},
				testinfra.BuildSession(30, authority.RoleStudent))
			Expect(err).To(BeNil())
			Expect(u.Name).To(Equal("cat"))
			Expect(u.BasePrice).To(BeZero())

			loaded, err := account.DetailUser(30, admin)
			Expect(err).To(BeNil())
			Expect(loaded.BasePrice).To(BeZero())
			Expect(loaded.OpenToWork).To(BeTrue())
			Expect(loaded.Skills).To(Equal(domain.Skills{"python"}))
			Expect(loaded.Nickname).To(BeEmpty())
		})
	})

	Describe("QueryAccountNames", func() {
		It("should map ids to display names", func() {
			_, err := account.CreateUser(&account.UserCreation{ID: 40, Name: "dan", Nickname: "Dan", Role: authority.RoleTeacher}, admin)
			Expect(err).To(BeNil())
			_, err = account.CreateUser(&account.UserCreation{ID: 41, Name: "eve", Role: authority.RoleStudent}, admin)
			Expect(err).To(BeNil())

			names, err := account.QueryAccountNames(context.TODO(), []types.ID{40, 41, 42})
			Expect(err).To(BeNil())
			Expect(names).To(Equal(map[types.ID]string{40: "Dan", 41: "eve"}))

			names, err = account.QueryAccountNames(context.TODO(), nil)
			Expect(err).To(BeNil())
			Expect(names).To(BeEmpty())
		})
	})

	Describe("EnsureAdminProfile", func() {
		It("should create admin profile once", func() {
			Expect(account.EnsureAdminProfile(context.TODO(), 1, "root")).To(BeNil())
			Expect(account.EnsureAdminProfile(context.TODO(), 1, "other")).To(BeNil())
			u, err := account.DetailUser(1, admin)
			Expect(err).To(BeNil())
			Expect(u.Name).To(Equal("root"))
			Expect(u.Role).To(Equal(authority.RoleAdmin))
		})
	})
})
