// Package audiofeat computes onset, energy and spectral descriptors from raw
// waveforms. The cue refiner cross-validates the alignment tool's output
// against these features.
package audiofeat

import (
	"log/slog"
	"math"
	"os"

	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	defaultHopMS   = 10
	windowSize     = 1024
	rolloffFrac    = 0.85
	fluxPeakRadius = 3
)

// Analyzer extracts Features from WAV audio. Construction is cheap; the FFT
// plan is reused across calls.
type Analyzer struct {
	hopMS int
	fft   *fourier.FFT
	log   *slog.Logger
}

// NewAnalyzer creates an analyzer with the given hop size in milliseconds.
// Hops above 12ms lose sub-cue-boundary precision, so values outside (0,12]
// are clamped to the default.
func NewAnalyzer(hopMS int, log *slog.Logger) *Analyzer {
	if hopMS <= 0 || hopMS > 12 {
		hopMS = defaultHopMS
	}
	return &Analyzer{
		hopMS: hopMS,
		fft:   fourier.NewFFT(windowSize),
		log:   log.With(slog.String("component", "audiofeat")),
	}
}

// Analyze reads a WAV file and computes its features. It never fails:
// unreadable, corrupt or empty audio yields zero-valued Features, which the
// caller treats as an all-silent clip.
func (a *Analyzer) Analyze(path string) Features {
	file, err := os.Open(path)
	if err != nil {
		a.log.Warn("audio unreadable, treating as silence", slog.String("path", path), slog.String("error", err.Error()))
		return Features{}
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		a.log.Warn("not a valid wav file, treating as silence", slog.String("path", path))
		return Features{}
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil || buf == nil || len(buf.Data) == 0 {
		a.log.Warn("empty pcm payload, treating as silence", slog.String("path", path))
		return Features{}
	}

	samples := monoFloat(buf.Data, buf.Format.NumChannels, int(decoder.BitDepth))
	return a.AnalyzeSamples(samples, buf.Format.SampleRate)
}

// AnalyzeSamples computes features over normalized mono samples.
func (a *Analyzer) AnalyzeSamples(samples []float64, sampleRate int) Features {
	if len(samples) == 0 || sampleRate <= 0 {
		return Features{}
	}

	hop := sampleRate * a.hopMS / 1000
	if hop < 1 {
		hop = 1
	}

	f := Features{
		Duration:   float64(len(samples)) / float64(sampleRate),
		SampleRate: sampleRate,
	}

	window := hannWindow(windowSize)
	frame := make([]float64, windowSize)
	prevMag := make([]float64, windowSize/2+1)
	var flux []float64
	var fluxTimes []float64

	for start := 0; start < len(samples); start += hop {
		t := float64(start) / float64(sampleRate)

		end := start + windowSize
		n := windowSize
		if end > len(samples) {
			end = len(samples)
			n = end - start
		}

		var sumSq float64
		var crossings int
		for i := 0; i < n; i++ {
			s := samples[start+i]
			sumSq += s * s
			if i > 0 && (s >= 0) != (samples[start+i-1] >= 0) {
				crossings++
			}
		}
		rms := math.Sqrt(sumSq / float64(n))
		f.Energy = append(f.Energy, FramePoint{Time: t, Value: rms})
		f.ZeroCross = append(f.ZeroCross, FramePoint{Time: t, Value: float64(crossings) / float64(n)})

		for i := 0; i < windowSize; i++ {
			if i < n {
				frame[i] = samples[start+i] * window[i]
			} else {
				frame[i] = 0
			}
		}
		coeffs := a.fft.Coefficients(nil, frame)

		var magSum, weighted, fluxVal float64
		mags := make([]float64, len(coeffs))
		for k, c := range coeffs {
			mag := math.Hypot(real(c), imag(c))
			mags[k] = mag
			magSum += mag
			weighted += mag * a.fft.Freq(k) * float64(sampleRate)
			if d := mag - prevMag[k]; d > 0 {
				fluxVal += d
			}
		}
		copy(prevMag, mags)
		flux = append(flux, fluxVal)
		fluxTimes = append(fluxTimes, t)

		centroid := 0.0
		if magSum > 0 {
			centroid = weighted / magSum
		}
		f.Centroid = append(f.Centroid, FramePoint{Time: t, Value: centroid})

		rolloff := 0.0
		if magSum > 0 {
			target := rolloffFrac * magSum
			var acc float64
			for k, mag := range mags {
				acc += mag
				if acc >= target {
					rolloff = a.fft.Freq(k) * float64(sampleRate)
					break
				}
			}
		}
		f.Rolloff = append(f.Rolloff, FramePoint{Time: t, Value: rolloff})
	}

	f.Onsets = pickOnsets(flux, fluxTimes, f.Energy)
	return f
}

// pickOnsets selects spectral-flux peaks above an adaptive threshold and
// backtracks each peak to the preceding energy minimum, the true attack
// point.
func pickOnsets(flux, times []float64, energy []FramePoint) []float64 {
	if len(flux) < 2 {
		return nil
	}

	var mean float64
	for _, v := range flux {
		mean += v
	}
	mean /= float64(len(flux))
	var variance float64
	for _, v := range flux {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(flux)))
	threshold := mean + std
	if threshold <= 0 {
		return nil
	}

	var onsets []float64
	for i := range flux {
		if flux[i] < threshold {
			continue
		}
		peak := true
		for j := i - fluxPeakRadius; j <= i+fluxPeakRadius; j++ {
			if j < 0 || j >= len(flux) || j == i {
				continue
			}
			if flux[j] > flux[i] {
				peak = false
				break
			}
		}
		if !peak {
			continue
		}
		onsets = append(onsets, backtrack(i, times, energy))
	}
	return dedupe(onsets)
}

// backtrack walks backward from the peak frame to the local energy minimum.
func backtrack(frame int, times []float64, energy []FramePoint) float64 {
	i := frame
	if i >= len(energy) {
		i = len(energy) - 1
	}
	for i > 0 && energy[i-1].Value < energy[i].Value {
		i--
	}
	return energy[i].Time
}

func dedupe(onsets []float64) []float64 {
	var out []float64
	for _, o := range onsets {
		if len(out) == 0 || o-out[len(out)-1] > 1e-9 {
			out = append(out, o)
		}
	}
	return out
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// monoFloat mixes interleaved integer PCM down to normalized mono samples.
func monoFloat(data []int, channels, bitDepth int) []float64 {
	if channels < 1 {
		channels = 1
	}
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))
	out := make([]float64, 0, len(data)/channels)
	for i := 0; i+channels <= len(data); i += channels {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(data[i+c])
		}
		out = append(out, sum/float64(channels)/scale)
	}
	return out
}
