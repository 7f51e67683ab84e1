package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/hwbench/hwbench/sim"
)

var _ sim.TimeTeller = (*sim.Driver)(nil)

var _ = Describe("Driver", func() {
	var (
		mockCtrl *gomock.Controller
		ctx      *sim.Context
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		ctx = sim.NewContext(nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("with an internal clock", func() {
		It("should dump once per step at times 1..N until the model finishes", func() {
			model := NewMockModel(mockCtrl)
			recorder := NewMockRecorder(mockCtrl)

			recorder.EXPECT().Bind(model, 99)
			recorder.EXPECT().Open().Return(nil)

			evals := 0
			model.EXPECT().Eval().Do(func() {
				evals++
				if evals == 37 {
					ctx.Finish()
				}
			}).Times(37)

			closed := false
			var dumps []sim.VTime
			recorder.EXPECT().Dump(gomock.Any()).Do(func(t sim.VTime) {
				Expect(closed).To(BeFalse())
				dumps = append(dumps, t)
			}).Times(37)
			recorder.EXPECT().Close().Do(func() {
				closed = true
			}).Return(nil)

			driver := sim.MakeBuilder().
				WithContext(ctx).
				WithModel(model).
				WithRecorder(recorder).
				Build()

			finalTime, err := driver.Run()

			Expect(err).ToNot(HaveOccurred())
			Expect(finalTime).To(Equal(sim.VTime(37)))
			Expect(closed).To(BeTrue())
			Expect(dumps).To(HaveLen(37))
			for i, t := range dumps {
				Expect(t).To(Equal(sim.VTime(i + 1)))
			}
		})

		It("should stop at the step bound if the model stalls", func() {
			model := NewMockModel(mockCtrl)

			model.EXPECT().Eval().Times(10)

			driver := sim.MakeBuilder().
				WithContext(ctx).
				WithModel(model).
				WithStepLimit(10).
				Build()

			finalTime, err := driver.Run()

			Expect(err).ToNot(HaveOccurred())
			Expect(finalTime).To(Equal(sim.VTime(10)))
			Expect(ctx.Finished()).To(BeFalse())
		})
	})

	Context("with an external clock", func() {
		var (
			model     *MockClockedModel
			clk       bool
			clkValues []bool
		)

		BeforeEach(func() {
			model = NewMockClockedModel(mockCtrl)
			clk = false
			clkValues = nil

			model.EXPECT().Clock().DoAndReturn(func() bool {
				return clk
			}).AnyTimes()
			model.EXPECT().SetClock(gomock.Any()).Do(func(v bool) {
				clk = v
				clkValues = append(clkValues, v)
			}).AnyTimes()
		})

		It("should run exactly stepLimit iterations if the model never finishes", func() {
			recorder := NewMockRecorder(mockCtrl)
			recorder.EXPECT().Bind(model, 99)
			recorder.EXPECT().Open().Return(nil)

			model.EXPECT().Eval().Times(1000)

			var dumps []sim.VTime
			recorder.EXPECT().Dump(gomock.Any()).Do(func(t sim.VTime) {
				dumps = append(dumps, t)
			}).Times(1000)
			recorder.EXPECT().Close().Return(nil)

			driver := sim.MakeBuilder().
				WithContext(ctx).
				WithModel(model).
				WithRecorder(recorder).
				WithClockMode(sim.ClockExternal).
				WithStepLimit(1000).
				Build()

			finalTime, err := driver.Run()

			Expect(err).ToNot(HaveOccurred())
			Expect(finalTime).To(Equal(sim.VTime(1000)))
			Expect(dumps).To(HaveLen(1000))
			Expect(dumps[0]).To(Equal(sim.VTime(0)))
			Expect(dumps[999]).To(Equal(sim.VTime(999)))
			Expect(clkValues).To(HaveLen(1000))
		})

		It("should alternate the clock strictly every iteration", func() {
			model.EXPECT().Eval().Times(100)

			driver := sim.MakeBuilder().
				WithContext(ctx).
				WithModel(model).
				WithClockMode(sim.ClockExternal).
				WithStepLimit(100).
				Build()

			_, err := driver.Run()

			Expect(err).ToNot(HaveOccurred())
			for i, v := range clkValues {
				Expect(v).To(Equal(i%2 == 0))
			}
		})

		It("should exit as soon as the model finishes", func() {
			evals := 0
			model.EXPECT().Eval().Do(func() {
				evals++
				if evals == 42 {
					ctx.Finish()
				}
			}).Times(42)

			driver := sim.MakeBuilder().
				WithContext(ctx).
				WithModel(model).
				WithClockMode(sim.ClockExternal).
				WithStepLimit(1000).
				Build()

			finalTime, err := driver.Run()

			Expect(err).ToNot(HaveOccurred())
			Expect(finalTime).To(Equal(sim.VTime(42)))
			Expect(clkValues).To(HaveLen(42))
		})
	})

	It("should invoke hooks around each step and on termination", func() {
		model := NewMockModel(mockCtrl)
		hook := NewMockHook(mockCtrl)

		model.EXPECT().Eval().Times(3)

		var positions []*sim.HookPos
		var reason sim.TerminateReason
		hook.EXPECT().Func(gomock.Any()).Do(func(hookCtx sim.HookCtx) {
			positions = append(positions, hookCtx.Pos)
			if hookCtx.Pos == sim.HookPosTerminate {
				reason = hookCtx.Detail.(sim.TerminateReason)
			}
		}).AnyTimes()

		driver := sim.MakeBuilder().
			WithContext(ctx).
			WithModel(model).
			WithStepLimit(3).
			Build()
		driver.AcceptHook(hook)

		_, err := driver.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(positions).To(HaveLen(7))
		Expect(positions[0]).To(Equal(sim.HookPosBeforeStep))
		Expect(positions[1]).To(Equal(sim.HookPosAfterStep))
		Expect(positions[6]).To(Equal(sim.HookPosTerminate))
		Expect(reason).To(Equal(sim.TerminatedByStepLimit))
	})

	It("should call run end handlers with the final time", func() {
		model := NewMockModel(mockCtrl)
		handler := NewMockRunEndHandler(mockCtrl)

		model.EXPECT().Eval().Times(5)
		handler.EXPECT().Handle(sim.VTime(5))

		driver := sim.MakeBuilder().
			WithContext(ctx).
			WithModel(model).
			WithStepLimit(5).
			Build()
		driver.RegisterRunEndHandler(handler)

		_, err := driver.Run()

		Expect(err).ToNot(HaveOccurred())
	})

	It("should report the model as the termination source when it finishes", func() {
		model := NewMockModel(mockCtrl)
		hook := NewMockHook(mockCtrl)

		model.EXPECT().Eval().Do(func() {
			ctx.Finish()
		}).Times(1)

		var reason sim.TerminateReason
		hook.EXPECT().Func(gomock.Any()).Do(func(hookCtx sim.HookCtx) {
			if hookCtx.Pos == sim.HookPosTerminate {
				reason = hookCtx.Detail.(sim.TerminateReason)
			}
		}).AnyTimes()

		driver := sim.MakeBuilder().
			WithContext(ctx).
			WithModel(model).
			WithStepLimit(1000).
			Build()
		driver.AcceptHook(hook)

		finalTime, err := driver.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(finalTime).To(Equal(sim.VTime(1)))
		Expect(reason).To(Equal(sim.TerminatedByModel))
	})

	It("should tolerate time and finished polling from another goroutine", func() {
		model := NewMockModel(mockCtrl)

		model.EXPECT().Eval().AnyTimes()

		driver := sim.MakeBuilder().
			WithContext(ctx).
			WithModel(model).
			WithStepLimit(100000).
			Build()

		stop := make(chan struct{})
		polled := make(chan struct{})
		go func() {
			defer close(polled)
			for {
				select {
				case <-stop:
					return
				default:
					driver.CurrentTime()
					ctx.Finished()
				}
			}
		}()

		finalTime, err := driver.Run()
		close(stop)
		<-polled

		Expect(err).ToNot(HaveOccurred())
		Expect(finalTime).To(Equal(sim.VTime(100000)))
	})

	It("should refuse to run twice", func() {
		model := NewMockModel(mockCtrl)

		model.EXPECT().Eval().Do(func() {
			ctx.Finish()
		}).Times(1)

		driver := sim.MakeBuilder().
			WithContext(ctx).
			WithModel(model).
			Build()

		_, err := driver.Run()
		Expect(err).ToNot(HaveOccurred())

		Expect(func() { _, _ = driver.Run() }).To(Panic())
	})
})

var _ = Describe("Builder", func() {
	var mockCtrl *gomock.Controller

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should require a model", func() {
		Expect(func() { sim.MakeBuilder().Build() }).To(Panic())
	})

	It("should require a ClockedModel for external clocking", func() {
		model := NewMockModel(mockCtrl)

		Expect(func() {
			sim.MakeBuilder().
				WithModel(model).
				WithClockMode(sim.ClockExternal).
				WithStepLimit(100).
				Build()
		}).To(Panic())
	})

	It("should require a step limit for external clocking", func() {
		model := NewMockClockedModel(mockCtrl)

		Expect(func() {
			sim.MakeBuilder().
				WithModel(model).
				WithClockMode(sim.ClockExternal).
				Build()
		}).To(Panic())
	})

	It("should require a positive trace depth", func() {
		model := NewMockModel(mockCtrl)

		Expect(func() {
			sim.MakeBuilder().
				WithModel(model).
				WithTraceDepth(0).
				Build()
		}).To(Panic())
	})
})
