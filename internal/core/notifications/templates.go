// Package notifications renders filing status notifications in the client's language.
package notifications

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// Language is a supported notification language.
type Language string

const (
	English    Language = "en"
	French     Language = "fr"
	Portuguese Language = "pt"
)

// ParseLanguage normalises a language tag ("fr-CA", "PT") to a supported language, defaulting to English.
func ParseLanguage(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	switch Language(tag) {
	case French:
		return French
	case Portuguese:
		return Portuguese
	default:
		return English
	}
}

// Placeholder names understood by the templates.
const (
	PlaceholderClientName   = "CLIENT_NAME"
	PlaceholderTaxYear      = "TAX_YEAR"
	PlaceholderDashboardURL = "DASHBOARD_URL"
	PlaceholderAmount       = "AMOUNT"
)

// Rendered is a notification ready to be sent.
type Rendered struct {
	Subject string
	Body    string
}

type template struct {
	subject string
	body    string
}

// templates is keyed by status id, then language. It is never mutated after init.
var templates = map[string]map[Language]template{
	"documents-received": {
		English: {
			subject: "We received your documents for {{TAX_YEAR}}",
			body:    "Hello {{CLIENT_NAME}},\n\nWe received the documents for your {{TAX_YEAR}} tax return. Our team will now prepare your calculation.\n\nFollow the progress on your dashboard: {{DASHBOARD_URL}}",
		},
		French: {
			subject: "Nous avons reçu vos documents pour {{TAX_YEAR}}",
			body:    "Bonjour {{CLIENT_NAME}},\n\nNous avons reçu les documents de votre déclaration de revenus {{TAX_YEAR}}. Notre équipe va maintenant préparer votre calcul.\n\nSuivez l'avancement sur votre tableau de bord : {{DASHBOARD_URL}}",
		},
		Portuguese: {
			subject: "Recebemos os seus documentos de {{TAX_YEAR}}",
			body:    "Olá {{CLIENT_NAME}},\n\nRecebemos os documentos da sua declaração de impostos de {{TAX_YEAR}}. A nossa equipa vai agora preparar o seu cálculo.\n\nAcompanhe o progresso no seu painel: {{DASHBOARD_URL}}",
		},
	},
	"in-processing": {
		English: {
			subject: "Your {{TAX_YEAR}} tax return is being processed",
			body:    "Hello {{CLIENT_NAME}},\n\nThank you, your deposit was received and your {{TAX_YEAR}} file is open. You can now upload your documents from your dashboard: {{DASHBOARD_URL}}",
		},
		French: {
			subject: "Votre déclaration {{TAX_YEAR}} est en traitement",
			body:    "Bonjour {{CLIENT_NAME}},\n\nMerci, votre dépôt a été reçu et votre dossier {{TAX_YEAR}} est ouvert. Vous pouvez maintenant téléverser vos documents depuis votre tableau de bord : {{DASHBOARD_URL}}",
		},
		Portuguese: {
			subject: "A sua declaração de {{TAX_YEAR}} está em processamento",
			body:    "Olá {{CLIENT_NAME}},\n\nObrigado, o seu depósito foi recebido e o seu processo de {{TAX_YEAR}} está aberto. Já pode enviar os seus documentos a partir do seu painel: {{DASHBOARD_URL}}",
		},
	},
	"report-ready": {
		English: {
			subject: "Your {{TAX_YEAR}} tax report is ready",
			body:    "Hello {{CLIENT_NAME}},\n\nYour {{TAX_YEAR}} tax report is ready for review. The remaining balance of {{AMOUNT}} can be paid from your dashboard: {{DASHBOARD_URL}}",
		},
		French: {
			subject: "Votre rapport d'impôt {{TAX_YEAR}} est prêt",
			body:    "Bonjour {{CLIENT_NAME}},\n\nVotre rapport d'impôt {{TAX_YEAR}} est prêt. Le solde de {{AMOUNT}} peut être réglé depuis votre tableau de bord : {{DASHBOARD_URL}}",
		},
		Portuguese: {
			subject: "O seu relatório de impostos de {{TAX_YEAR}} está pronto",
			body:    "Olá {{CLIENT_NAME}},\n\nO seu relatório de impostos de {{TAX_YEAR}} está pronto. O saldo restante de {{AMOUNT}} pode ser pago no seu painel: {{DASHBOARD_URL}}",
		},
	},
	"filing-submitted": {
		English: {
			subject: "Your {{TAX_YEAR}} tax return was submitted",
			body:    "Hello {{CLIENT_NAME}},\n\nWe received your final payment and submitted your {{TAX_YEAR}} tax return to the tax authority. We will let you know once it is confirmed.\n\n{{DASHBOARD_URL}}",
		},
		French: {
			subject: "Votre déclaration {{TAX_YEAR}} a été transmise",
			body:    "Bonjour {{CLIENT_NAME}},\n\nNous avons reçu votre paiement final et transmis votre déclaration {{TAX_YEAR}} à l'autorité fiscale. Nous vous informerons dès sa confirmation.\n\n{{DASHBOARD_URL}}",
		},
		Portuguese: {
			subject: "A sua declaração de {{TAX_YEAR}} foi submetida",
			body:    "Olá {{CLIENT_NAME}},\n\nRecebemos o seu pagamento final e submetemos a sua declaração de {{TAX_YEAR}} à autoridade fiscal. Avisaremos assim que for confirmada.\n\n{{DASHBOARD_URL}}",
		},
	},
	"completed": {
		English: {
			subject: "Your {{TAX_YEAR}} tax return is complete",
			body:    "Hello {{CLIENT_NAME}},\n\nThe tax authority confirmed your {{TAX_YEAR}} tax return. Your file is now complete. Thank you for your trust!\n\n{{DASHBOARD_URL}}",
		},
		French: {
			subject: "Votre déclaration {{TAX_YEAR}} est terminée",
			body:    "Bonjour {{CLIENT_NAME}},\n\nL'autorité fiscale a confirmé votre déclaration {{TAX_YEAR}}. Votre dossier est maintenant terminé. Merci de votre confiance !\n\n{{DASHBOARD_URL}}",
		},
		Portuguese: {
			subject: "A sua declaração de {{TAX_YEAR}} está concluída",
			body:    "Olá {{CLIENT_NAME}},\n\nA autoridade fiscal confirmou a sua declaração de {{TAX_YEAR}}. O seu processo está concluído. Obrigado pela sua confiança!\n\n{{DASHBOARD_URL}}",
		},
	},
}

// ShouldSendNotification is the single authority on whether a status change emails the client.
func ShouldSendNotification(statusID string) bool {
	_, ok := templates[statusID]
	return ok
}

// NotifyingStatuses returns the status ids that have a template, sorted.
func NotifyingStatuses() []string {
	out := make([]string, 0, len(templates))
	for id := range templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ErrNoTemplate is returned by Render for a status id without a template.
var ErrNoTemplate = errors.New("no notification template")

// ErrMissingReplacement is returned by Render when a placeholder has no value.
var ErrMissingReplacement = errors.New("notification placeholder has no value")

var placeholderPattern = regexp.MustCompile(`\{\{[A-Z_]+\}\}`)

// Render substitutes the replacements into the template for statusID in lang.
// Unknown languages fall back to English. Every placeholder in the template must
// have a replacement; a notification is never rendered with one left in.
func Render(statusID string, lang Language, replacements map[string]string) (Rendered, error) {
	byLang, ok := templates[statusID]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %q", ErrNoTemplate, statusID)
	}
	tmpl, ok := byLang[lang]
	if !ok {
		tmpl = byLang[English]
	}

	pairs := make([]string, 0, len(replacements)*2)
	for name, value := range replacements {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	r := strings.NewReplacer(pairs...)
	rendered := Rendered{
		Subject: r.Replace(tmpl.subject),
		Body:    r.Replace(tmpl.body),
	}

	if missing := placeholderPattern.FindAllString(rendered.Subject+rendered.Body, -1); len(missing) > 0 {
		slices.Sort(missing)
		return Rendered{}, fmt.Errorf("%w: %s in %q", ErrMissingReplacement, strings.Join(slices.Compact(missing), ", "), statusID)
	}
	return rendered, nil
}
