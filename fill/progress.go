package fill

import (
	"math"

	"github.com/mbolis/ankietio/model"
)

// Set feeds raw input to the control of question i and reports the
// progress milestones reached.
func (f *Flow) Set(i int, input string) error {
	err := f.controls[i].Set(input)
	if err != nil {
		return err
	}
	f.controls[i].Touch()
	f.milestones()
	return nil
}

func (f *Flow) AnsweredCount() int {
	n := 0
	for _, ctl := range f.controls {
		if ctl.Answered() {
			n++
		}
	}
	return n
}

// Progress is the rounded percentage of answered questions.
func (f *Flow) Progress() int {
	if len(f.controls) == 0 {
		return 0
	}
	return int(math.Round(float64(f.AnsweredCount()) / float64(len(f.controls)) * 100))
}

func (f *Flow) milestones() {
	p := f.Progress()
	if p >= 50 && p < 55 && !f.halfway {
		f.halfway = true
		f.toasts.Info(MsgHalfway)
	}
	if p == 100 && !f.complete {
		f.complete = true
		f.toasts.Info(MsgComplete)
	}
}

// EstimatedMinutes guesses the time to answer: half a minute per open
// question, ten seconds per other one, never less than a minute.
func EstimatedMinutes(questions []model.Question) int {
	open := 0
	for _, q := range questions {
		if q.AnswerType == model.AnswerOpen {
			open++
		}
	}
	m := int(math.Ceil(float64(open)*0.5 + float64(len(questions)-open)*0.17))
	if m < 1 {
		return 1
	}
	return m
}
