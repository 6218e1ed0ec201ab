package listpage

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/apiclient"
	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/pkg"
)

// modalTarget is the selector of the modal container in the layout.
const modalTarget = "#modal"

type fieldView struct {
	Name     string
	Label    string
	Type     string
	Options  []optionView
	Required bool
	Value    string
	Error    string
}

// formData is the view data of the create and edit modal.
type formData struct {
	Title     string
	Action    string
	Method    string
	Submit    string
	Fields    []fieldView
	Error     string
	CSRFToken string
}

// New renders an empty create form.
func (p *Page[T]) New(c *gin.Context) {
	p.renderForm(c, http.StatusOK, p.createForm(), func(entities.Field[T]) string { return "" }, nil, "")
}

// Edit renders the edit form of one entity.
func (p *Page[T]) Edit(c *gin.Context) {
	id, ok := p.parseID(c)
	if !ok {
		return
	}
	row, err := p.sourceFor(c).Get(requestContext(c), id)
	if err != nil {
		p.actionFailed(c, err, "Could not open the "+p.entity.Singular+".")
		return
	}
	p.renderForm(c, http.StatusOK, p.editForm(id), func(f entities.Field[T]) string { return f.Value(*row) }, nil, "")
}

// Create validates the posted form and creates the entity.
func (p *Page[T]) Create(c *gin.Context) {
	src := p.sourceFor(c)
	p.submit(c, p.createForm(), capitalize(p.entity.Singular)+" created", func(ctx context.Context, in entities.Input[T]) error {
		_, err := src.Create(ctx, in)
		return err
	})
}

// Update validates the posted form and replaces the entity.
func (p *Page[T]) Update(c *gin.Context) {
	id, ok := p.parseID(c)
	if !ok {
		return
	}
	src := p.sourceFor(c)
	p.submit(c, p.editForm(id), capitalize(p.entity.Singular)+" updated", func(ctx context.Context, in entities.Input[T]) error {
		_, err := src.Update(ctx, id, in)
		return err
	})
}

// Delete removes one entity and refreshes the list.
func (p *Page[T]) Delete(c *gin.Context) {
	id, ok := p.parseID(c)
	if !ok {
		return
	}
	if err := p.sourceFor(c).Delete(requestContext(c), id); err != nil {
		p.actionFailed(c, err, "Could not delete the "+p.entity.Singular+".")
		return
	}
	pkg.Trigger(c, pkg.EventRefreshList, nil)
	pkg.Toast(c, pkg.ToastSuccess, capitalize(p.entity.Singular)+" deleted")
	pkg.NoSwap(c)
	c.Status(http.StatusOK)
}

// submit binds and validates the form before any API call. Invalid input and
// rejected saves re-render the modal; a successful save closes it and
// refreshes the list.
func (p *Page[T]) submit(c *gin.Context, form formData, success string, save func(context.Context, entities.Input[T]) error) {
	posted := func(f entities.Field[T]) string { return c.PostForm(f.Name) }

	input := p.entity.NewInput()
	if err := c.ShouldBind(input); err != nil {
		fields, ok := pkg.FieldErrors(err, input)
		msg := ""
		if !ok {
			msg = "Check the form and try again."
		}
		p.renderForm(c, http.StatusUnprocessableEntity, form, posted, fields, msg)
		return
	}

	if err := save(requestContext(c), input); err != nil {
		if p.rejectAuth(c, err, p.path()) {
			return
		}
		var fields map[string]string
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) {
			fields = apiErr.Fields
		}
		if !domain.IsValidation(err) && !domain.IsAlreadyExists(err) {
			p.opts.Logger.WarnContext(c.Request.Context(), "save failed", "list", p.entity.Slug, "error", err)
		}
		msg := domain.UserMessage(err, "Could not save the "+p.entity.Singular+". Try again.")
		c.Header(pkg.HeaderHXRetarget, modalTarget)
		c.Header(pkg.HeaderHXReswap, "innerHTML")
		pkg.Toast(c, pkg.ToastError, msg)
		p.renderForm(c, http.StatusUnprocessableEntity, form, posted, fields, msg)
		return
	}

	pkg.Trigger(c, pkg.EventCloseModal, nil)
	pkg.Trigger(c, pkg.EventRefreshList, nil)
	pkg.Toast(c, pkg.ToastSuccess, success)
	pkg.NoSwap(c)
	c.Status(http.StatusOK)
}

// actionFailed reports a failed item action with a toast, leaving the page
// as it is.
func (p *Page[T]) actionFailed(c *gin.Context, err error, fallback string) {
	if p.rejectAuth(c, err, p.path()) {
		return
	}
	if !domain.IsNotFound(err) {
		p.opts.Logger.WarnContext(c.Request.Context(), "item action failed", "list", p.entity.Slug, "error", err)
	}
	pkg.Toast(c, pkg.ToastError, domain.UserMessage(err, fallback))
	pkg.NoSwap(c)
	c.Status(http.StatusOK)
}

func (p *Page[T]) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		pkg.Toast(c, pkg.ToastError, capitalize(p.entity.Singular)+" not found")
		pkg.NoSwap(c)
		c.Status(http.StatusOK)
		return 0, false
	}
	return uint(id), true
}

func (p *Page[T]) createForm() formData {
	return formData{
		Title:  "New " + p.entity.Singular,
		Action: p.path(),
		Method: "post",
		Submit: "Create",
	}
}

func (p *Page[T]) editForm(id uint) formData {
	return formData{
		Title:  "Edit " + p.entity.Singular,
		Action: p.itemPath(id),
		Method: "put",
		Submit: "Save",
	}
}

func (p *Page[T]) renderForm(c *gin.Context, status int, form formData, value func(entities.Field[T]) string, errs map[string]string, msg string) {
	form.Error = msg
	form.CSRFToken = middleware.GetCSRFToken(c)
	form.Fields = make([]fieldView, len(p.entity.Fields))
	for i, f := range p.entity.Fields {
		v := value(f)
		fv := fieldView{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
			Value:    v,
			Error:    errs[f.Name],
		}
		for _, o := range f.Options {
			fv.Options = append(fv.Options, optionView{Value: o.Value, Label: o.Label, Selected: o.Value == v})
		}
		form.Fields[i] = fv
	}
	c.HTML(status, templateForm, form)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
