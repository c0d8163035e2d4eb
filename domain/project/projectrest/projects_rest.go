package projectrest

import (
	"net/http"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"skillbridge/domain/assignment"
	"skillbridge/domain/candidacy"
	"skillbridge/domain/project"
	"skillbridge/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathProjects = "/v1/projects"

	ActionAccept = "accept"
	ActionReject = "reject"
)

func RegisterProjectsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathProjects, middleWares...)
	g.POST("", handleCreateProject)
	g.GET("", handleQueryProjects)
	g.GET(":id", handleDetailProject)
	g.PATCH(":id", handlePatchProject)
	g.DELETE(":id", handleDeleteProject)

	g.POST(":id/applications", handleApply)
	g.DELETE(":id/applications", handleWithdrawApplication)
	g.GET(":id/applications", handleQueryApplications)
	g.PATCH(":id/applications/manage", handleManageApplication)

	g.POST(":id/invite", handleInvite)
	g.GET(":id/invite", handleQueryInvitations)
	g.PATCH(":id/invite", handleRespondInvitation)
	g.DELETE(":id/invite", handleWithdrawInvitation)
}

func projectId(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateProject(c *gin.Context) {
	creation := domain.ProjectCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	p, err := project.CreateProjectFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, p)
}

func handleQueryProjects(c *gin.Context) {
	q := domain.ProjectQuery{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := project.QueryProjectsFunc(&q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleDetailProject(c *gin.Context) {
	p, err := project.DetailProjectFunc(projectId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, p)
}

func handlePatchProject(c *gin.Context) {
	id := projectId(c)
	patch := domain.ProjectPatch{}
	if err := c.ShouldBindBodyWith(&patch, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	p, err := project.PatchProjectFunc(id, &patch, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, p)
}

func handleDeleteProject(c *gin.Context) {
	if err := project.DeleteProjectFunc(projectId(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleApply(c *gin.Context) {
	id := projectId(c)
	creation := domain.ApplicationCreation{}
	// body is optional
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
	}
	a, err := candidacy.ApplyFunc(id, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, a)
}

func handleWithdrawApplication(c *gin.Context) {
	if err := candidacy.WithdrawApplicationFunc(projectId(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleQueryApplications(c *gin.Context) {
	list, err := candidacy.QueryApplicationsFunc(projectId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, list)
}

func handleManageApplication(c *gin.Context) {
	id := projectId(c)
	m := domain.ApplicationManagement{}
	if err := c.ShouldBindBodyWith(&m, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	sec := session.ExtractSessionFromGinContext(c)
	if m.Action == ActionAccept {
		p, err := assignment.AcceptApplicationFunc(id, m.ApplicationID, sec)
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, p)
		return
	}
	a, err := candidacy.RejectApplicationFunc(id, m.ApplicationID, sec)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, a)
}

func handleInvite(c *gin.Context) {
	id := projectId(c)
	creation := domain.InvitationCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	i, err := candidacy.InviteFunc(id, creation.FreelancerID, false, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, i)
}

func handleQueryInvitations(c *gin.Context) {
	list, err := candidacy.QueryInvitationsFunc(projectId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, list)
}

func handleRespondInvitation(c *gin.Context) {
	id := projectId(c)
	r := domain.InvitationResponse{}
	if err := c.ShouldBindBodyWith(&r, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	sec := session.ExtractSessionFromGinContext(c)
	if r.Action == ActionAccept {
		p, err := assignment.AcceptInvitationFunc(id, sec)
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, p)
		return
	}
	i, err := candidacy.RejectInvitationFunc(id, sec)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, i)
}

func handleWithdrawInvitation(c *gin.Context) {
	id := projectId(c)
	w := domain.InvitationWithdrawal{}
	if err := c.ShouldBindQuery(&w); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := candidacy.WithdrawInvitationFunc(id, w.FreelancerID, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
