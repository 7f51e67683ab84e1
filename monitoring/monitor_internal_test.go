package monitoring

import (
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hwbench/hwbench/model/toplevel"
	"github.com/hwbench/hwbench/sim"
)

var _ = Describe("Monitor", func() {
	var (
		monitor *Monitor
		driver  *sim.Driver
	)

	BeforeEach(func() {
		ctx := sim.NewContext(nil)
		model := toplevel.MakeBuilder().WithContext(ctx).Build()
		driver = sim.MakeBuilder().
			WithContext(ctx).
			WithModel(model).
			WithClockMode(sim.ClockExternal).
			WithStepLimit(10).
			Build()

		monitor = NewMonitor()
		monitor.RegisterDriver(driver)
	})

	It("should report the current time", func() {
		w := httptest.NewRecorder()

		monitor.now(w, nil)

		Expect(w.Body.String()).To(Equal(`{"now":0}`))
	})

	It("should report the finished state", func() {
		w := httptest.NewRecorder()

		monitor.finished(w, nil)

		Expect(w.Body.String()).To(Equal(`{"finished":false}`))
	})

	It("should list the model signals", func() {
		w := httptest.NewRecorder()

		monitor.listSignals(w, nil)

		Expect(w.Body.String()).To(ContainSubstring(`"name":"clk"`))
		Expect(w.Body.String()).To(ContainSubstring(`"name":"count"`))
	})

	It("should leave the driver runnable after a signal read", func() {
		w := httptest.NewRecorder()

		monitor.listSignals(w, nil)

		finalTime, err := driver.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(finalTime).To(Equal(sim.VTime(10)))
	})

	It("should fall back to a random port for privileged port numbers", func() {
		monitor.WithPortNumber(80)

		Expect(monitor.portNumber).To(Equal(0))
	})
})
