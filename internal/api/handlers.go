package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/zenstudio/internal/articles"
	"github.com/bilgisen/zenstudio/internal/checklist"
	"github.com/bilgisen/zenstudio/internal/export"
	"github.com/bilgisen/zenstudio/internal/middleware"
	"github.com/bilgisen/zenstudio/internal/models"
	"github.com/bilgisen/zenstudio/internal/posts"
	"github.com/bilgisen/zenstudio/internal/projectconfig"
	"github.com/bilgisen/zenstudio/internal/sink"
)

const version = "1.0.0"

// Deps are the collaborators served by the HTTP API. Sink may be nil when
// uploads are not configured.
type Deps struct {
	Projects  *projectconfig.Store
	Schedule  *posts.Store
	Articles  *articles.Index
	Checklist *checklist.Store
	Sink      sink.Sink
	Calendar  export.CalendarOptions
}

type Handlers struct {
	Deps
	validator *middleware.Validator
	now       func() time.Time
}

func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		Deps:      deps,
		validator: middleware.NewValidator(),
		now:       time.Now,
	}
}

// project returns the project selected by the "project" query parameter.
func project(c *fiber.Ctx) (string, error) {
	p := c.Query("project")
	if p == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "project query parameter is required")
	}
	return p, nil
}

func boolQuery(c *fiber.Ctx, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"time":    h.now().Format(time.RFC3339),
	})
}

// GetConfig handles GET /config
func (h *Handlers) GetConfig(c *fiber.Ctx) error {
	info, err := h.Projects.Ensure(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(info)
}

type projectPathRequest struct {
	Path string `json:"path" validate:"required"`
}

// SetLastProject handles PUT /config/last-project
func (h *Handlers) SetLastProject(c *fiber.Ctx) error {
	var req projectPathRequest
	if err := h.validator.BodyParser(c, &req); err != nil {
		return err
	}
	info, err := h.Projects.UpdateLastProjectPath(c.UserContext(), req.Path)
	if err != nil {
		return err
	}
	return c.JSON(info)
}

// RemoveRecentProject handles DELETE /config/recent-projects
func (h *Handlers) RemoveRecentProject(c *fiber.Ctx) error {
	var req projectPathRequest
	if err := h.validator.BodyParser(c, &req); err != nil {
		return err
	}
	info, err := h.Projects.RemoveProjectPath(c.UserContext(), req.Path)
	if err != nil {
		return err
	}
	return c.JSON(info)
}

// MarkBootstrapNotice handles POST /config/bootstrap-notice
func (h *Handlers) MarkBootstrapNotice(c *fiber.Ctx) error {
	info, err := h.Projects.MarkBootstrapNoticeSeen(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(info)
}

// GetSchedule handles GET /schedule
func (h *Handlers) GetSchedule(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	record, outcome := h.Schedule.LoadDetailed(c.UserContext(), p)
	return c.JSON(fiber.Map{
		"posts":       record.Posts,
		"projectPath": record.ProjectPath,
		"lastUpdated": record.LastUpdated,
		"outcome":     outcome.String(),
	})
}

type scheduleRequest struct {
	Posts []models.ScheduledPost `json:"posts" validate:"dive"`
}

// PutSchedule handles PUT /schedule. With files=true every post is also
// written as a frontmatter file.
func (h *Handlers) PutSchedule(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	var req scheduleRequest
	if err := h.validator.BodyParser(c, &req); err != nil {
		return err
	}

	if boolQuery(c, "files") {
		paths, err := h.Schedule.SaveWithFiles(c.UserContext(), p, req.Posts)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"saved": len(req.Posts), "paths": paths})
	}
	if err := h.Schedule.Save(c.UserContext(), p, req.Posts); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"saved": len(req.Posts)})
}

type autoSaveRequest struct {
	Posts     []models.PlatformPost                     `json:"posts" validate:"required,dive"`
	Schedules map[models.Platform]models.ScheduleEntry `json:"schedules"`
}

// AutoSchedule handles POST /schedule/auto
func (h *Handlers) AutoSchedule(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	var req autoSaveRequest
	if err := h.validator.BodyParser(c, &req); err != nil {
		return err
	}
	result, err := h.Schedule.AutoSave(c.UserContext(), p, req.Posts, req.Schedules)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetStats handles GET /schedule/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	return c.JSON(h.Schedule.Stats(c.UserContext(), p))
}

// UpdatePost handles PATCH /posts/:id
func (h *Handlers) UpdatePost(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	var patch models.PostPatch
	if err := h.validator.BodyParser(c, &patch); err != nil {
		return err
	}
	post, err := h.Schedule.Update(c.UserContext(), p, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /posts/:id
func (h *Handlers) DeletePost(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	if err := h.Schedule.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ArchivePost handles POST /posts/:id/archive
func (h *Handlers) ArchivePost(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	path, err := h.Schedule.Archive(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"path": path})
}

// ListArticles handles GET /articles
func (h *Handlers) ListArticles(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	list, outcome := h.Articles.ListDetailed(c.UserContext(), p, boolQuery(c, "rescan"))
	return c.JSON(fiber.Map{
		"articles": list,
		"total":    len(list),
		"outcome":  outcome.String(),
	})
}

// GetArticle handles GET /articles/:id
func (h *Handlers) GetArticle(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	article, err := h.Articles.Load(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(article)
}

// SaveArticle handles POST /articles
func (h *Handlers) SaveArticle(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	var input models.ArticleInput
	if err := h.validator.BodyParser(c, &input); err != nil {
		return err
	}
	article, err := h.Articles.Save(c.UserContext(), p, input)
	if err != nil {
		return err
	}
	return c.JSON(article)
}

// DeleteArticle handles DELETE /articles/:id
func (h *Handlers) DeleteArticle(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	if err := h.Articles.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetChecklist handles GET /checklist. The project is optional here: without
// one the checklist lives in the ephemeral store.
func (h *Handlers) GetChecklist(c *fiber.Ctx) error {
	platform, err := queryPlatform(c)
	if err != nil {
		return err
	}
	items, outcome := h.Checklist.LoadDetailed(c.UserContext(), checklist.TasksForPlatform(platform), c.Query("project"))
	return c.JSON(fiber.Map{
		"items":   items,
		"outcome": outcome.String(),
	})
}

// queryPlatform reads the optional platform query parameter.
func queryPlatform(c *fiber.Ctx) (models.Platform, error) {
	raw := c.Query("platform")
	if raw == "" {
		return "", nil
	}
	p, err := models.ParsePlatform(raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return p, nil
}

type checklistRequest struct {
	Items []models.ChecklistItem `json:"items" validate:"dive"`
}

// PutChecklist handles PUT /checklist
func (h *Handlers) PutChecklist(c *fiber.Ctx) error {
	var req checklistRequest
	if err := h.validator.BodyParser(c, &req); err != nil {
		return err
	}
	if err := h.Checklist.Save(c.UserContext(), req.Items, c.Query("project")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"saved": len(req.Items)})
}

// ExportChecklist handles GET /checklist/export. format is markdown, csv
// or xlsx; title heads the document.
func (h *Handlers) ExportChecklist(c *fiber.Ctx) error {
	platform, err := queryPlatform(c)
	if err != nil {
		return err
	}
	items := h.Checklist.Load(c.UserContext(), checklist.TasksForPlatform(platform), c.Query("project"))

	doc, err := checklist.Render(c.Query("format", "markdown"), items, c.Query("title"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.deliver(c, doc.FileName(), doc.ContentType, doc.Data)
}

// ExportCalendar handles GET /export/calendar
func (h *Handlers) ExportCalendar(c *fiber.Ctx) error {
	p, err := project(c)
	if err != nil {
		return err
	}
	record := h.Schedule.Load(c.UserContext(), p)

	opts := h.Calendar
	opts.Now = h.now()
	data, err := export.RenderCalendar(record.Posts, opts)
	if err != nil {
		return err
	}
	return h.deliver(c, export.FormatCalendar.FileName(h.now()), export.FormatCalendar.ContentType(), data)
}

// ExportPayload handles POST /export/:format. An empty body exports the
// project's schedule together with its checklist.
func (h *Handlers) ExportPayload(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Params("format"))
	if err != nil || format == export.FormatCalendar {
		return fiber.NewError(fiber.StatusBadRequest, "format must be markdown, csv or pdf")
	}

	var in export.PayloadInput
	if len(c.Body()) > 0 {
		if err := h.validator.BodyParser(c, &in); err != nil {
			return err
		}
	} else {
		p, err := project(c)
		if err != nil {
			return err
		}
		in = h.ProjectPayload(c.UserContext(), p)
	}
	in.GeneratedAt = h.now()

	data, err := export.Render(format, export.BuildPayload(in))
	if err != nil {
		return err
	}
	return h.deliver(c, format.FileName(h.now()), format.ContentType(), data)
}

// ProjectPayload collects the project's schedule and checklist for export.
func (h *Handlers) ProjectPayload(ctx context.Context, projectPath string) export.PayloadInput {
	record := h.Schedule.Load(ctx, projectPath)
	inputs, schedules := export.FromSchedule(record.Posts)
	return export.PayloadInput{
		Posts:          inputs,
		Schedules:      schedules,
		ChecklistItems: h.Checklist.Load(ctx, checklist.TasksForPlatform(""), projectPath),
		ProjectPath:    projectPath,
	}
}

// deliver sends data as a download, or hands it to the sink with upload=true.
func (h *Handlers) deliver(c *fiber.Ctx, name, contentType string, data []byte) error {
	if boolQuery(c, "upload") {
		if h.Sink == nil {
			return fiber.NewError(fiber.StatusConflict, "export upload is not configured")
		}
		location, err := h.Sink.Deliver(c.UserContext(), name, contentType, data)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"location": location,
			"bytes":    len(data),
		})
	}

	c.Attachment(name)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
