package dashboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateInfoUpsertsChunk(t *testing.T) {
	d := New()
	d.UpdateInfo("/tmp/a", 0, 100, 1000)
	d.UpdateInfo("/tmp/a", 1, 200, 2000)

	speed, size := d.SpeedAndSize("/tmp/a")
	assert.Equal(t, int64(300), speed)
	assert.Equal(t, int64(3000), size)
}

func TestUpdateInfoOverwritesSameChunk(t *testing.T) {
	d := New()
	d.UpdateInfo("/tmp/a", 0, 100, 1000)
	d.UpdateInfo("/tmp/a", 0, 50, 1500)

	speed, size := d.SpeedAndSize("/tmp/a")
	assert.Equal(t, int64(50), speed)
	assert.Equal(t, int64(1500), size)
}

func TestAllSpeedSumsAcrossPaths(t *testing.T) {
	d := New()
	d.UpdateInfo("/tmp/a", 0, 100, 1000)
	d.UpdateInfo("/tmp/b", 0, 250, 500)

	assert.Equal(t, int64(350), d.AllSpeed())
}

func TestSpeedAndSizeAggregateSanity(t *testing.T) {
	d := New()
	d.UpdateInfo("/tmp/a", 0, 10, 100)
	d.UpdateInfo("/tmp/b", 0, 20, 200)

	assert.Equal(t, d.Speed("/tmp/a")+d.Speed("/tmp/b"), d.AllSpeed())
}

func TestRemoveErasesFileEntry(t *testing.T) {
	d := New()
	d.UpdateInfo("/tmp/a", 0, 10, 100)
	d.Remove("/tmp/a")

	speed, size := d.SpeedAndSize("/tmp/a")
	assert.Zero(t, speed)
	assert.Zero(t, size)
}

func TestUnknownPathReturnsZero(t *testing.T) {
	d := New()
	assert.Zero(t, d.Speed("/never/seen"))
	assert.Zero(t, d.Size("/never/seen"))
}

func TestConcurrentReadsAndWritesDoNotRace(t *testing.T) {
	d := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.UpdateInfo("/tmp/a", i, int64(i), int64(i*10))
		}()
		go func() {
			defer wg.Done()
			d.SpeedAndSize("/tmp/a")
			d.AllSpeed()
		}()
	}
	wg.Wait()
}

func TestHumanFormatting(t *testing.T) {
	assert.Equal(t, "1.0 MB/s", HumanSpeed(1000000))
	assert.Equal(t, "1.0 MB", HumanSize(1000000))
}
