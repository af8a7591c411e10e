// Package prompt builds the model prompts for each generation stage and
// for content evaluation. The output format the prompts demand is a hard
// contract: scheme output must carry a weekly markdown table with
// week-number-prefixed rows, and lesson plans / lesson notes must be
// headed by "WEEK {n}" markers, because downstream week extraction slices
// content on those shapes.
package prompt

import (
	"fmt"
	"strings"
)

const schemeOfWorkTemplate = `You are an experienced Nigerian curriculum planner. Create a complete
scheme of work for the subject and grade below, strictly aligned with the
Nigerian national curriculum.

Subject: %s
Grade Level: %s
Topic: %s

Curriculum context (retrieved from official curriculum documents):
%s

Requirements:
1. Start with a short overview of the term's learning objectives.
2. Present the weekly breakdown as a markdown table. The table MUST have
   these columns, in this order: | Week | Topic | Learning Objectives | Activities | Resources |
3. Every row MUST begin with the week number in the first column
   (e.g. | 1 | Introduction to %s | ... |). Number the weeks
   consecutively starting from 1 and cover a full school term
   (at least 10 weeks, with revision and examination weeks at the end).
4. Topics must build on each other week by week and reflect Nigerian
   classroom realities (class sizes, available materials, local examples).
5. Use clear, measurable learning objectives for every week.

Produce only the scheme of work, no commentary before or after it.`

const lessonPlanTemplate = `You are an experienced Nigerian teacher. Write a detailed lesson plan for
one week of teaching, based on the scheme of work context below.

Subject: %s
Grade Level: %s
Topic: %s

Curriculum context:
%s

Teaching constraints to respect:
%s

Requirements:
1. The document MUST begin with a heading of the form "WEEK {n}" where
   {n} is the week number this topic occupies in the scheme of work.
2. Include, in order: learning objectives, previous knowledge,
   instructional materials, lesson development broken into clearly
   labelled steps with timings, evaluation questions, and assignment.
3. Use teaching methods that work in a typical Nigerian classroom and
   respect the teaching constraints above.
4. Objectives must be specific and measurable ("By the end of the lesson,
   pupils should be able to ...").

Produce only the lesson plan, no commentary before or after it.`

const lessonNotesTemplate = `You are an experienced Nigerian teacher. Write comprehensive lesson notes
that a pupil can study from, expanding the lesson plan below into full
teaching content.

Subject: %s
Grade Level: %s
Topic: %s

Relevant section of the scheme of work:
%s

Lesson plan to expand:
%s

Requirements:
1. The document MUST begin with the same "WEEK {n}" heading as the
   lesson plan.
2. Explain every concept fully in language appropriate for the grade
   level, with worked examples and Nigerian, culturally relevant
   illustrations.
3. Follow the structure of the lesson plan: cover each step of the
   lesson development as its own section.
4. End with evaluation questions and their expected answers, followed by
   the assignment.

Produce only the lesson notes, no commentary before or after them.`

const evaluationTemplate = `You are an expert reviewer of Nigerian educational content. Evaluate the
%s below against the official curriculum context.

Subject: %s
Grade Level: %s
Topic: %s

Curriculum context:
%s

Content to evaluate:
%s

Score each metric as an integer from 0 (unacceptable) to 5 (excellent)
and give a one-sentence reason for each score:

Accuracy metrics:
- curriculum_compliance: does the content follow the Nigerian curriculum context above?
- topic_relevance: does the content stay on the stated topic?
- content_consistency: is the content internally consistent and logically ordered?
- quality_readability: is the language clear and appropriate for the grade level?
- cultural_relevance: are examples and framing appropriate for Nigerian classrooms?

Bias metric:
- bias: is the content free of gender, ethnic, religious or regional bias?
  (5 means no bias detected)`

// jsonInstruction pins the evaluation output to a machine-decodable shape.
const jsonInstruction = "\n\nIMPORTANT: OUTPUT MUST BE VALID JSON ONLY! " +
	"DO NOT INCLUDE ANY OTHER TEXT BEFORE OR AFTER THE JSON OBJECT. " +
	"USE THIS EXACT STRUCTURE:\n" +
	`{"accuracy": {"curriculum_compliance": {"score": 0, "reason": ""}, ` +
	`"topic_relevance": {"score": 0, "reason": ""}, ` +
	`"content_consistency": {"score": 0, "reason": ""}, ` +
	`"quality_readability": {"score": 0, "reason": ""}, ` +
	`"cultural_relevance": {"score": 0, "reason": ""}}, ` +
	`"bias": {"score": 0, "reason": ""}}`

// DefaultTeachingConstraints is substituted when the caller provides no
// constraints for a lesson plan.
const DefaultTeachingConstraints = "No constraints provided"

// SchemeOfWork builds the prompt for the scheme-of-work stage.
// curriculumContext may be empty when retrieval is unavailable.
func SchemeOfWork(subject, gradeLevel, topic, curriculumContext string) string {
	return fmt.Sprintf(schemeOfWorkTemplate, subject, gradeLevel, topic, curriculumContext, topic)
}

// LessonPlan builds the prompt for the lesson-plan stage. Empty
// teachingConstraints are replaced with DefaultTeachingConstraints.
func LessonPlan(subject, gradeLevel, topic, curriculumContext, teachingConstraints string) string {
	if strings.TrimSpace(teachingConstraints) == "" {
		teachingConstraints = DefaultTeachingConstraints
	}
	return fmt.Sprintf(lessonPlanTemplate, subject, gradeLevel, topic, curriculumContext, teachingConstraints)
}

// LessonNotes builds the prompt for the lesson-notes stage from the
// week-sliced scheme and lesson plan contexts.
func LessonNotes(subject, gradeLevel, topic, schemeContext, lessonPlanContext string) string {
	return fmt.Sprintf(lessonNotesTemplate, subject, gradeLevel, topic, schemeContext, lessonPlanContext)
}

// Evaluation builds the evaluation prompt for a generated document,
// ending with the strict JSON output instruction.
func Evaluation(contentType, subject, gradeLevel, topic, curriculum, content string) string {
	base := fmt.Sprintf(evaluationTemplate, contentType, subject, gradeLevel, topic, curriculum, content)
	return base + jsonInstruction
}
