package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/mail"
	"github.com/shashiranjanraj/uniformhub/pkg/metrics"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
	"github.com/shashiranjanraj/uniformhub/pkg/queue"
)

// GenericTemplate is used when a named template does not exist. It reads
// .subject, .message and .name from the data.
const GenericTemplate = "generic"

const maxFragmentDepth = 5

type TemplateInput struct {
	Name        string `json:"name" validate:"required,slug,max=120"`
	Subject     string `json:"subject" validate:"required,max=255"`
	Body        string `json:"body" validate:"required"`
	Description string `json:"description" validate:"max=255"`
}

type FragmentInput struct {
	Name string `json:"name" validate:"required,slug,max=120"`
	Body string `json:"body" validate:"required"`
}

type PreviewInput struct {
	Data map[string]any `json:"data"`
}

// SendTestInput sends either a stored template or an ad-hoc subject/body.
type SendTestInput struct {
	To         string         `json:"to" validate:"required,email"`
	TemplateID *uint          `json:"templateId"`
	Subject    string         `json:"subject" validate:"max=255"`
	Body       string         `json:"body"`
	Data       map[string]any `json:"data"`
}

type Rendered struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type EmailService struct {
	templates repositories.Repo[models.EmailTemplate]
	fragments repositories.Repo[models.EmailFragment]
	logs      repositories.Repo[models.EmailLog]
	db        *gorm.DB
	mailer    mail.Sender
}

func NewEmailService(db *gorm.DB, mailer mail.Sender) *EmailService {
	return &EmailService{
		templates: repositories.NewRepo[models.EmailTemplate](db),
		fragments: repositories.NewRepo[models.EmailFragment](db),
		logs:      repositories.NewRepo[models.EmailLog](db),
		db:        db,
		mailer:    mailer,
	}
}

// sampleData fills the variables every seeded template uses.
func sampleData() map[string]any {
	return map[string]any{
		"name":    "Alex Parent",
		"email":   "alex@example.com",
		"subject": "Sample subject",
		"message": "This is a preview of the message body.",
	}
}

// ── Templates ────────────────────────────────────────────────────────────────

func (s *EmailService) Templates(ctx context.Context) ([]models.EmailTemplate, error) {
	return s.templates.Where(ctx, "name asc", "")
}

func (s *EmailService) Template(ctx context.Context, id uint) (*models.EmailTemplate, error) {
	t, err := s.templates.Find(ctx, id)
	return t, notFound(err, "email template")
}

func (s *EmailService) CreateTemplate(ctx context.Context, in TemplateInput) (*models.EmailTemplate, error) {
	t := &models.EmailTemplate{}
	if err := s.applyTemplate(ctx, t, in); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *EmailService) UpdateTemplate(ctx context.Context, id uint, in TemplateInput) (*models.EmailTemplate, error) {
	t, err := s.Template(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTemplate(ctx, t, in); err != nil {
		return nil, err
	}
	if err := s.templates.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *EmailService) DeleteTemplate(ctx context.Context, id uint) error {
	return notFound(s.templates.Delete(ctx, id), "email template")
}

func (s *EmailService) applyTemplate(ctx context.Context, t *models.EmailTemplate, in TemplateInput) error {
	taken, err := s.templates.Exists(ctx, "name = ? AND id <> ?", in.Name, t.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("email template %s already exists", in.Name)
	}
	if _, err := texttemplate.New("subject").Parse(in.Subject); err != nil {
		return invalid("subject", "The subject is not a valid template: "+err.Error())
	}
	if _, err := template.New("body").Funcs(stubFuncs).Parse(in.Body); err != nil {
		return invalid("body", "The body is not a valid template: "+err.Error())
	}
	t.Name = in.Name
	t.Subject = in.Subject
	t.Body = in.Body
	t.Description = in.Description
	return nil
}

// ── Fragments ────────────────────────────────────────────────────────────────

func (s *EmailService) Fragments(ctx context.Context) ([]models.EmailFragment, error) {
	return s.fragments.Where(ctx, "name asc", "")
}

func (s *EmailService) Fragment(ctx context.Context, id uint) (*models.EmailFragment, error) {
	f, err := s.fragments.Find(ctx, id)
	return f, notFound(err, "email fragment")
}

func (s *EmailService) CreateFragment(ctx context.Context, in FragmentInput) (*models.EmailFragment, error) {
	f := &models.EmailFragment{}
	if err := s.applyFragment(ctx, f, in); err != nil {
		return nil, err
	}
	if err := s.fragments.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *EmailService) UpdateFragment(ctx context.Context, id uint, in FragmentInput) (*models.EmailFragment, error) {
	f, err := s.Fragment(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Name != in.Name {
		if err := s.checkUnreferenced(ctx, f.Name); err != nil {
			return nil, err
		}
	}
	if err := s.applyFragment(ctx, f, in); err != nil {
		return nil, err
	}
	if err := s.fragments.Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFragment refuses while any template or fragment still includes it.
func (s *EmailService) DeleteFragment(ctx context.Context, id uint) error {
	f, err := s.Fragment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkUnreferenced(ctx, f.Name); err != nil {
		return err
	}
	return notFound(s.fragments.Delete(ctx, id), "email fragment")
}

func (s *EmailService) checkUnreferenced(ctx context.Context, name string) error {
	needle := "%" + fmt.Sprintf("fragment %q", name) + "%"
	inTemplates, err := s.templates.Count(ctx, "body LIKE ?", needle)
	if err != nil {
		return err
	}
	inFragments, err := s.fragments.Count(ctx, "body LIKE ? AND name <> ?", needle, name)
	if err != nil {
		return err
	}
	if n := inTemplates + inFragments; n > 0 {
		return conflictf("fragment %s is used by %d templates or fragments", name, n)
	}
	return nil
}

func (s *EmailService) applyFragment(ctx context.Context, f *models.EmailFragment, in FragmentInput) error {
	taken, err := s.fragments.Exists(ctx, "name = ? AND id <> ?", in.Name, f.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("email fragment %s already exists", in.Name)
	}
	if _, err := template.New("fragment").Funcs(stubFuncs).Parse(in.Body); err != nil {
		return invalid("body", "The body is not a valid template: "+err.Error())
	}
	f.Name = in.Name
	f.Body = in.Body
	return nil
}

// ── Rendering ────────────────────────────────────────────────────────────────

// stubFuncs lets templates parse before fragments are known.
var stubFuncs = template.FuncMap{"fragment": func(string) (template.HTML, error) { return "", nil }}

// Render executes subject as a text template and body as an HTML template.
// {{fragment "name"}} includes a stored fragment rendered with the same data.
func (s *EmailService) Render(ctx context.Context, subject, body string, data map[string]any) (*Rendered, error) {
	frags, err := s.fragments.Where(ctx, "", "")
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(frags))
	for _, f := range frags {
		byName[f.Name] = f.Body
	}

	st, err := texttemplate.New("subject").Option("missingkey=zero").Parse(subject)
	if err != nil {
		return nil, invalid("subject", err.Error())
	}
	var sb strings.Builder
	if err := st.Execute(&sb, data); err != nil {
		return nil, invalid("subject", err.Error())
	}

	html, err := renderHTML(body, data, byName, 0)
	if err != nil {
		return nil, invalid("body", err.Error())
	}
	return &Rendered{Subject: strings.TrimSpace(sb.String()), HTML: html}, nil
}

func renderHTML(src string, data map[string]any, frags map[string]string, depth int) (string, error) {
	if depth > maxFragmentDepth {
		return "", errors.New("fragments nested too deeply")
	}
	t, err := template.New("body").Option("missingkey=zero").Funcs(template.FuncMap{
		"fragment": func(name string) (template.HTML, error) {
			body, ok := frags[name]
			if !ok {
				return "", fmt.Errorf("unknown fragment %q", name)
			}
			out, err := renderHTML(body, data, frags, depth+1)
			return template.HTML(out), err
		},
	}).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Preview renders template id with sample data overlaid by in.Data.
func (s *EmailService) Preview(ctx context.Context, id uint, in PreviewInput) (*Rendered, error) {
	t, err := s.Template(ctx, id)
	if err != nil {
		return nil, err
	}
	data := sampleData()
	for k, v := range in.Data {
		data[k] = v
	}
	return s.Render(ctx, t.Subject, t.Body, data)
}

// ── Sending ──────────────────────────────────────────────────────────────────

// SendTemplate renders the named template, or GenericTemplate when it is
// missing, and sends it. A missing generic template is logged as failed.
func (s *EmailService) SendTemplate(ctx context.Context, to, name string, data map[string]any) error {
	t, err := s.templates.FindBy(ctx, "name = ?", name)
	if errors.Is(err, gorm.ErrRecordNotFound) && name != GenericTemplate {
		logger.WithCtx(ctx).Info("email template missing, using generic", "template", name)
		t, err = s.templates.FindBy(ctx, "name = ?", GenericTemplate)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.record(ctx, to, name, "", fmt.Errorf("template %s and %s are both missing", name, GenericTemplate))
		return nil
	}
	if err != nil {
		return err
	}

	r, err := s.Render(ctx, t.Subject, t.Body, data)
	if err != nil {
		s.record(ctx, to, t.Name, t.Subject, err)
		return nil
	}
	return s.deliver(ctx, to, t.Name, r)
}

// SendTest sends synchronously and returns the log row written for it.
func (s *EmailService) SendTest(ctx context.Context, in SendTestInput) (*models.EmailLog, error) {
	data := sampleData()
	for k, v := range in.Data {
		data[k] = v
	}
	name := "test"
	subject, body := in.Subject, in.Body
	if in.TemplateID != nil {
		t, err := s.Template(ctx, *in.TemplateID)
		if err != nil {
			return nil, err
		}
		name, subject, body = t.Name, t.Subject, t.Body
	} else if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Fields: map[string]string{
			"templateId": "Either templateId or subject and body are required.",
		}}
	}

	r, err := s.Render(ctx, subject, body, data)
	if err != nil {
		return nil, err
	}
	sendErr := s.mailer.Send(ctx, &mail.Message{To: []string{in.To}, Subject: r.Subject, HTML: r.HTML})
	return s.record(ctx, in.To, name, r.Subject, sendErr), nil
}

func (s *EmailService) deliver(ctx context.Context, to, name string, r *Rendered) error {
	err := s.mailer.Send(ctx, &mail.Message{To: []string{to}, Subject: r.Subject, HTML: r.HTML})
	s.record(ctx, to, name, r.Subject, err)
	return err
}

// record writes the EmailLog row for one attempt.
func (s *EmailService) record(ctx context.Context, to, name, subject string, sendErr error) *models.EmailLog {
	row := &models.EmailLog{To: to, TemplateName: name, Subject: subject, Status: models.EmailSent}
	if sendErr != nil {
		row.Status = models.EmailFailed
		row.Error = sendErr.Error()
		logger.WithCtx(ctx).Warn("email failed", "to", to, "template", name, "error", sendErr)
	}
	metrics.EmailsSent.WithLabelValues(name, row.Status).Inc()
	if err := s.logs.Create(ctx, row); err != nil {
		logger.WithCtx(ctx).Error("email log write failed", "error", err)
	}
	return row
}

func (s *EmailService) Logs(ctx context.Context, status string, page orm.PageRequest) ([]models.EmailLog, orm.Pagination, error) {
	q := s.logs.DB(ctx).Model(&models.EmailLog{})
	switch status {
	case "":
	case models.EmailSent, models.EmailFailed:
		q = q.Where("status = ?", status)
	default:
		return nil, orm.Pagination{}, invalid("status", "The status must be sent or failed.")
	}
	var out []models.EmailLog
	p, err := orm.Paginate(q.Order("id desc"), page, &out)
	return out, p, err
}

// PruneLogs deletes log rows older than age.
func (s *EmailService) PruneLogs(ctx context.Context, age time.Duration) (int64, error) {
	res := s.logs.DB(ctx).Where("created_at < ?", time.Now().Add(-age)).Delete(&models.EmailLog{})
	return res.RowsAffected, res.Error
}

// ── Queue ────────────────────────────────────────────────────────────────────

const sendTemplateJobName = "email.template"

// SendTemplateJob sends a template email from a queue worker.
type SendTemplateJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`

	emails *EmailService
}

func (*SendTemplateJob) JobName() string { return sendTemplateJobName }

func (j *SendTemplateJob) Handle(ctx context.Context) error {
	if j.emails == nil {
		return errors.New("email job has no sender")
	}
	return j.emails.SendTemplate(ctx, j.To, j.Template, j.Data)
}

// TemplateJob builds a job bound to s.
func (s *EmailService) TemplateJob(to, name string, data map[string]any) *SendTemplateJob {
	return &SendTemplateJob{To: to, Template: name, Data: data, emails: s}
}

// RegisterJobs teaches q how to rebuild email jobs popped off a driver.
func (s *EmailService) RegisterJobs(q *queue.Manager) {
	q.Register(sendTemplateJobName, func() queue.Job { return &SendTemplateJob{emails: s} })
}
