//go:build linux

package frame

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sort"

	"github.com/blackjack/webcam"
	"github.com/disintegration/gift"
	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
)

const (
	fmtYUYV  webcam.PixelFormat = 0x56595559
	fmtMJPEG webcam.PixelFormat = 0x47504a4d
)

// byArea sorts frame sizes smallest first.
type byArea []webcam.FrameSize

func (s byArea) Len() int      { return len(s) }
func (s byArea) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byArea) Less(i, j int) bool {
	return s[i].MaxWidth*s[i].MaxHeight < s[j].MaxWidth*s[j].MaxHeight
}

// v4lSource reads raw frames from a V4L2 device and converts them to BGR.
type v4lSource struct {
	cam     *webcam.Webcam
	format  webcam.PixelFormat
	w, h    uint32
	timeout uint32
	filter  *gift.GIFT
}

func openV4L(dev string, cfg config.Camera) (Source, error) {
	cam, err := webcam.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("frame: cannot open %s: %w", dev, err)
	}

	format, err := pickFormat(cam.GetSupportedFormats())
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("frame: %s: %w", dev, err)
	}

	sizes := byArea(cam.GetSupportedFrameSizes(format))
	if len(sizes) == 0 {
		cam.Close()
		return nil, fmt.Errorf("frame: %s reports no frame sizes", dev)
	}
	sort.Sort(sizes)
	size := pickSize(sizes, cfg.Width, cfg.Height)

	f, w, h, err := cam.SetImageFormat(format, size.MaxWidth, size.MaxHeight)
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("frame: %s: set format: %w", dev, err)
	}
	log.Printf("V4L2 %s: format %#x %dx%d", dev, uint32(f), w, h)

	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, fmt.Errorf("frame: %s: start streaming: %w", dev, err)
	}

	timeout := uint32(cfg.Timeout)
	if timeout == 0 {
		timeout = 5
	}

	return &v4lSource{
		cam:     cam,
		format:  f,
		w:       w,
		h:       h,
		timeout: timeout,
		filter:  transforms(cfg, int(w), int(h)),
	}, nil
}

func pickFormat(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, error) {
	// YUYV decodes without a JPEG round trip, so prefer it.
	for _, want := range []webcam.PixelFormat{fmtYUYV, fmtMJPEG} {
		if _, ok := formats[want]; ok {
			return want, nil
		}
	}
	return 0, errors.New("no YUYV or MJPEG format")
}

// pickSize returns the smallest size covering w x h, or the largest size
// when none does or no size was requested.
func pickSize(sizes byArea, w, h int) webcam.FrameSize {
	if w > 0 && h > 0 {
		for _, s := range sizes {
			if int(s.MaxWidth) >= w && int(s.MaxHeight) >= h {
				return s
			}
		}
	}
	return sizes[len(sizes)-1]
}

// transforms builds the mirror and resize filters applied to each decoded
// frame, or nil when the frame is used as is.
func transforms(cfg config.Camera, w, h int) *gift.GIFT {
	g := gift.New()
	if cfg.Mirror {
		g.Add(gift.FlipHorizontal())
	}
	if cfg.Width > 0 && cfg.Height > 0 && (cfg.Width != w || cfg.Height != h) {
		g.Add(gift.Resize(cfg.Width, cfg.Height, gift.LinearResampling))
	}
	if len(g.Filters) == 0 {
		return nil
	}
	return g
}

func (s *v4lSource) Read(m *gocv.Mat) error {
	if s.cam == nil {
		return ErrClosed
	}

	for {
		if err := s.cam.WaitForFrame(s.timeout); err != nil {
			var timeout *webcam.Timeout
			if errors.As(err, &timeout) {
				return fmt.Errorf("%w: no frame within %ds", ErrReadFailed, s.timeout)
			}
			return fmt.Errorf("%w: %v", ErrReadFailed, err)
		}

		raw, err := s.cam.ReadFrame()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		if len(raw) == 0 {
			continue
		}
		return s.decode(raw, m)
	}
}

func (s *v4lSource) decode(raw []byte, m *gocv.Mat) error {
	var img image.Image
	switch s.format {
	case fmtYUYV:
		yuv, err := yuyvToImage(raw, int(s.w), int(s.h))
		if err != nil {
			return err
		}
		img = yuv
	case fmtMJPEG:
		// OpenCV's JPEG decoder supplies the Huffman tables MJPEG omits.
		decoded, err := gocv.IMDecode(raw, gocv.IMReadColor)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		if s.filter == nil {
			decoded.CopyTo(m)
			decoded.Close()
			return nil
		}
		img, err = decoded.ToImage()
		decoded.Close()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
	}

	if s.filter != nil {
		dst := image.NewRGBA(s.filter.Bounds(img.Bounds()))
		s.filter.Draw(dst, img)
		img = dst
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	defer mat.Close()
	mat.CopyTo(m)
	return nil
}

// yuyvToImage wraps a packed YUYV 4:2:2 frame as an image.YCbCr.
func yuyvToImage(raw []byte, w, h int) (*image.YCbCr, error) {
	if len(raw) < w*h*2 {
		return nil, fmt.Errorf("%w: short YUYV frame (%d bytes for %dx%d)", ErrReadFailed, len(raw), w, h)
	}
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio422)
	for i := range img.Cb {
		ii := i * 4
		img.Y[i*2] = raw[ii]
		img.Y[i*2+1] = raw[ii+2]
		img.Cb[i] = raw[ii+1]
		img.Cr[i] = raw[ii+3]
	}
	return img, nil
}

func (s *v4lSource) FrameCount() int { return 0 }

// FPS is unknown for raw V4L2 capture.
func (s *v4lSource) FPS() float64 { return 0 }

func (s *v4lSource) Close() error {
	if s.cam == nil {
		return nil
	}
	// Close also stops streaming.
	err := s.cam.Close()
	s.cam = nil
	return err
}
