package account_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"skillbridge/account"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"skillbridge/session"
	"skillbridge/testinfra"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("users rest api", func() {
	var (
		router *gin.Engine
	)
	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		account.RegisterUsersRestAPI(router, testinfra.InjectSession(testinfra.BuildSession(1, "admin")))
	})
	AfterEach(func() {
		account.CreateUserFunc = account.CreateUser
		account.DetailUserFunc = account.DetailUser
		account.UpdateProfileFunc = account.UpdateProfile
	})

	It("should validate user creation", func() {
		req := httptest.NewRequest(http.MethodPost, account.PathUsers, strings.NewReader(`{"name":"ann","role":"robot"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'UserCreation.Role' Error:Field validation for 'Role' failed on the 'oneof' tag", "data":null}`))
	})

	It("should create user", func() {
		var payload *account.UserCreation
		account.CreateUserFunc = func(c *account.UserCreation, sec *session.Session) (*account.User, error) {
			payload = c
			return &account.User{ID: 10, Name: c.Name, Role: c.Role, Skills: domain.Skills{"go"}, BasePrice: c.BasePrice}, nil
		}
		req := httptest.NewRequest(http.MethodPost, account.PathUsers,
			strings.NewReader(`{"name":"ann","role":"student","skills":["go"],"basePrice":300}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(payload.Skills).To(Equal([]string{"go"}))
		Expect(body).To(MatchJSON(`{"id":"10","name":"ann","nickname":"","role":"student","skills":["go"],
			"basePrice":300,"openToWork":false,"createTime":null}`))
	})

	It("should return 404 for missing user", func() {
		account.DetailUserFunc = func(id types.ID, sec *session.Session) (*account.User, error) {
			return nil, bizerror.ErrUserNotFound
		}
		req := httptest.NewRequest(http.MethodGet, account.PathUsers+"/12", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"common.record_not_found","message":"user not found","data":null}`))
	})

	It("should reject malformed id", func() {
		req := httptest.NewRequest(http.MethodGet, account.PathUsers+"/abc", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("should update profile", func() {
		var id types.ID
		var payload *account.ProfileUpdating
		account.UpdateProfileFunc = func(userId types.ID, c *account.ProfileUpdating, sec *session.Session) (*account.User, error) {
			id, payload = userId, c
			return nil, errors.New("some error")
		}
		req := httptest.NewRequest(http.MethodPut, account.PathUsers+"/12/profile", strings.NewReader(`{"openToWork":true}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"some error","data":null}`))
		Expect(id).To(Equal(types.ID(12)))
		Expect(*payload.OpenToWork).To(BeTrue())
		Expect(payload.BasePrice).To(BeNil())

		req = httptest.NewRequest(http.MethodPut, account.PathUsers+"/12/profile", strings.NewReader(`{"basePrice":-1}`))
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
})
