package audio

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

func drain(s beep.Streamer) (count int, peak float64) {
	buf := make([][2]float64, 1000)
	for {
		n, ok := s.Stream(buf)
		for _, sample := range buf[:n] {
			peak = math.Max(peak, math.Abs(sample[0]))
		}
		count += n
		if !ok {
			return count, peak
		}
	}
}

func TestToneLength(t *testing.T) {
	sr := beep.SampleRate(8000)
	count, peak := drain(Tone(sr, 440, 250*time.Millisecond))
	if count != 2000 {
		t.Errorf("samples = %d, want 2000", count)
	}
	if peak <= 0.2 || peak > 0.3 {
		t.Errorf("peak = %v, want within (0.2, 0.3]", peak)
	}
}

func TestBuzzerLastsFiveSeconds(t *testing.T) {
	sr := beep.SampleRate(8000)
	count, _ := drain(Buzzer(sr))
	if count != sr.N(5*time.Second) {
		t.Errorf("samples = %d, want %d", count, sr.N(5*time.Second))
	}
}

func TestDisabledOutput(t *testing.T) {
	o := &Output{rate: DefaultSampleRate}
	err := o.Play(context.Background(), beep.Silence(10), beep.Format{SampleRate: DefaultSampleRate})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Play error = %v, want ErrDisabled", err)
	}
	o.Ring()

	if err := o.LoadAlarm("does-not-exist.ogg"); err == nil {
		t.Error("LoadAlarm should fail for a missing file")
	}
}

func TestCloseStopsPlayInFlight(t *testing.T) {
	started := make(chan struct{})
	var closed atomic.Int32
	speakerPlay = func(...beep.Streamer) { close(started) }
	speakerClose = func() { closed.Add(1) }
	defer func() {
		speakerPlay = speaker.Play
		speakerClose = speaker.Close
	}()

	sr := beep.SampleRate(8000)
	o := &Output{rate: sr, enabled: true, closing: make(chan struct{})}
	errc := make(chan error, 1)
	go func() {
		errc <- o.Play(context.Background(), Tone(sr, 440, time.Minute), beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("Play never reached the speaker")
	}
	o.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrDisabled) {
			t.Errorf("Play error = %v, want ErrDisabled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play still running after Close")
	}
	if o.Enabled() {
		t.Error("Output still enabled after Close")
	}

	o.Close()
	if n := closed.Load(); n != 1 {
		t.Errorf("speaker closed %d times, want 1", n)
	}
	if err := o.Play(context.Background(), beep.Silence(10), beep.Format{SampleRate: sr}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Play after Close = %v, want ErrDisabled", err)
	}
}
