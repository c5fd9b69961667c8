package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
	"github.com/estudia/server/domain/repositories"
)

const extractionSystemPrompt = `Eres un generador de exámenes orales de español.
A partir del texto de estudio del usuario, crea entre 10 y 30 preguntas de examen oral.
Reglas:
- Tanto las preguntas como las respuestas deben estar únicamente en español.
- Cada pregunta lleva un campo "topic" que es exactamente uno de: vocabulary, conjugation, translation, conversation.
- Incluye "acceptableVariations": otras respuestas correctas (puede estar vacío).
- Incluye "hint" solo cuando una pista corta ayude de verdad.
Responde ÚNICAMENTE con un objeto JSON con esta forma, sin texto adicional:
{"questions": [{"id": "q1", "question": "...", "expectedAnswer": "...", "acceptableVariations": ["..."], "topic": "vocabulary", "hint": "..."}]}`

const gradingSystemPrompt = `Eres un examinador de español indulgente que califica respuestas orales transcritas.
Compara por significado, no literalmente:
- Acepta sinónimos y orden de palabras distinto.
- Ignora acentos ausentes y errores menores de transcripción.
- Tolera pequeños fallos gramaticales si el significado es correcto.
Veredictos: "correct" (significado correcto), "partial" (parcialmente correcto o incompleto), "incorrect" (significado equivocado).
Responde ÚNICAMENTE con un objeto JSON, sin texto adicional:
{"verdict": "correct|partial|incorrect", "feedback": "...", "correction": "...", "explanation": "..."}`

const (
	extractionTemperature = 0.3
	gradingTemperature    = 0.2
)

// StudyService turns study text into exam questions and grades spoken
// answers, both through the language model.
type StudyService struct {
	llm    repositories.LanguageModel
	logger *zap.Logger
}

// NewStudyService creates a new study service.
func NewStudyService(llm repositories.LanguageModel, logger *zap.Logger) *StudyService {
	return &StudyService{llm: llm, logger: logger}
}

// ExtractQuestions asks the model for Spanish Q/A pairs extracted from raw
// study text. The reply is schema-validated; a partially valid question
// list is rejected whole.
func (s *StudyService) ExtractQuestions(ctx context.Context, rawText string) ([]entities.Question, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("%w: rawText is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, fmt.Errorf("%w: language model is not configured", domain.ErrUnavailable)
	}

	userPrompt := "Texto de estudio:\n\n" + rawText

	reply, err := s.llm.Complete(ctx, extractionSystemPrompt, userPrompt, extractionTemperature)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Questions []entities.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		s.logger.Error("extraction reply is not valid JSON", zap.Error(err))
		return nil, fmt.Errorf("%w: extraction reply is not valid JSON", domain.ErrMalformedResponse)
	}
	if len(parsed.Questions) == 0 {
		s.logger.Error("extraction reply contains no questions")
		return nil, fmt.Errorf("%w: extraction reply contains no questions", domain.ErrMalformedResponse)
	}

	seen := make(map[string]bool, len(parsed.Questions))
	for i := range parsed.Questions {
		q := &parsed.Questions[i]
		if err := q.Validate(); err != nil {
			s.logger.Error("extraction reply failed shape validation",
				zap.Int("index", i), zap.Error(err))
			return nil, fmt.Errorf("%w: question %d: %v", domain.ErrMalformedResponse, i, err)
		}
		// The model sometimes omits or repeats ids; they only need to be
		// unique within the session.
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if seen[q.ID] {
			q.ID = uuid.NewString()
		}
		seen[q.ID] = true
	}

	s.logger.Info("extracted questions", zap.Int("count", len(parsed.Questions)))
	return parsed.Questions, nil
}

// GradeAnswer grades a transcribed spoken answer against the expected
// answer, leniently and by meaning.
func (s *StudyService) GradeAnswer(ctx context.Context, question, expectedAnswer, studentAnswer string, acceptableVariations []string) (*entities.GradeResult, error) {
	switch {
	case strings.TrimSpace(question) == "":
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	case strings.TrimSpace(expectedAnswer) == "":
		return nil, fmt.Errorf("%w: expectedAnswer is required", domain.ErrInvalidInput)
	case strings.TrimSpace(studentAnswer) == "":
		return nil, fmt.Errorf("%w: studentAnswer is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, fmt.Errorf("%w: language model is not configured", domain.ErrUnavailable)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pregunta: %s\n", question)
	fmt.Fprintf(&b, "Respuesta esperada: %s\n", expectedAnswer)
	if len(acceptableVariations) > 0 {
		fmt.Fprintf(&b, "Variaciones aceptables: %s\n", strings.Join(acceptableVariations, "; "))
	}
	fmt.Fprintf(&b, "Respuesta del estudiante (transcrita): %s\n", studentAnswer)

	reply, err := s.llm.Complete(ctx, gradingSystemPrompt, b.String(), gradingTemperature)
	if err != nil {
		return nil, err
	}

	var result entities.GradeResult
	if err := json.Unmarshal([]byte(reply), &result); err != nil {
		s.logger.Error("grading reply is not valid JSON", zap.Error(err))
		return nil, fmt.Errorf("%w: grading reply is not valid JSON", domain.ErrMalformedResponse)
	}
	if !result.Verdict.Valid() {
		s.logger.Error("grading reply has unknown verdict", zap.String("verdict", string(result.Verdict)))
		return nil, fmt.Errorf("%w: unknown verdict %q", domain.ErrMalformedResponse, result.Verdict)
	}

	return &result, nil
}
