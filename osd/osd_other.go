//go:build !linux

package osd

import (
	"github.com/gen2brain/beeep"

	"micmute/log"
)

type beeepDisplay struct {
	w *worker
}

func New() (Display, error) {
	beeep.AppName = "micmute"
	d := &beeepDisplay{}
	d.w = startWorker(d.send)
	return d, nil
}

func (d *beeepDisplay) send(r request) {
	body := ""
	if pct, ok := Percent(r.level); ok {
		body = levelBar(pct)
	}
	if err := beeep.Notify(Summary(r.text, r.muted), body, ""); err != nil {
		log.Warnf("osd: %v", err)
	}
}

func (d *beeepDisplay) Show(text string, muted bool, level float64) {
	d.w.Show(text, muted, level)
}

func (d *beeepDisplay) Close() { d.w.stop() }

func Diagnose() (string, error) {
	return "system notifications", nil
}
