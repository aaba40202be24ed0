package sim_test

import (
	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spheresim/internal/particle"
	"github.com/san-kum/spheresim/internal/sim"
)

func withinCube(p mgl32.Vec3, center mgl32.Vec3, half float32) bool {
	for axis := range p {
		if p[axis] < center[axis]-half || p[axis] > center[axis]+half {
			return false
		}
	}
	return true
}

var _ = Describe("Population", func() {
	var (
		cfg sim.PopulationConfig
		pop *sim.Population
	)

	BeforeEach(func() {
		cfg = sim.DefaultPopulationConfig()
		cfg.InitialE = 0
		cfg.InitialMP = 0
		pop = sim.NewPopulation(cfg, 1234)
	})

	Describe("capacity", func() {
		It("rejects request-driven adds beyond the E cap", func() {
			Expect(pop.AddERandomN(995)).To(Equal(995))

			added := 0
			for i := 0; i < 10; i++ {
				n, err := pop.Apply(sim.Command{Kind: sim.AddE})
				Expect(err).NotTo(HaveOccurred())
				added += n
			}

			Expect(added).To(Equal(5))
			Expect(pop.LenE()).To(Equal(1000))
		})

		It("caps bulk adds", func() {
			Expect(pop.AddERandomN(1500)).To(Equal(1000))
			Expect(pop.SpawnERandom()).To(BeFalse())
			Expect(pop.InsertE(particle.NewE(mgl32.Vec3{}, 1))).To(BeFalse())
		})

		It("caps MP particles at 100", func() {
			for i := 0; i < 120; i++ {
				pop.SpawnMPRandom()
			}
			Expect(pop.LenMP()).To(Equal(100))
			Expect(pop.Counts()).To(Equal(sim.Counts{E: 0, MP: 100, MaxE: 1000, MaxMP: 100}))
		})
	})

	Describe("removal", func() {
		It("is a no-op on empty collections", func() {
			Expect(pop.RemoveRandomE()).To(BeFalse())
			Expect(pop.RemoveRandomMP()).To(BeFalse())
			Expect(pop.RemoveRandomEN(10)).To(Equal(0))
		})

		It("removes one particle at a time", func() {
			pop.AddERandomN(3)
			pop.SpawnMPRandom()

			Expect(pop.RemoveRandomE()).To(BeTrue())
			Expect(pop.LenE()).To(Equal(2))
			Expect(pop.RemoveRandomMP()).To(BeTrue())
			Expect(pop.LenMP()).To(Equal(0))
		})

		It("removes at most the available E particles in a batch", func() {
			pop.AddERandomN(4)
			Expect(pop.RemoveRandomEN(10)).To(Equal(4))
			Expect(pop.LenE()).To(Equal(0))
		})
	})

	Describe("spawn placement", func() {
		It("places bulk E spawns in the spawn cube with the configured strength", func() {
			pop.AddERandomN(200)
			for i := 0; i < pop.LenE(); i++ {
				e := pop.E(i)
				Expect(withinCube(e.Position, mgl32.Vec3{}, 20)).To(BeTrue())
				Expect(e.RepulsionStrength).To(Equal(float32(5)))
				Expect(e.Velocity).To(Equal(mgl32.Vec3{}))
			}
		})

		It("places request-driven E spawns next to the only MP particle", func() {
			center := mgl32.Vec3{5, 5, 5}
			Expect(pop.InsertMP(particle.NewMP(center, 3, 1.5))).To(BeTrue())

			for i := 0; i < 50; i++ {
				Expect(pop.SpawnENearRandomMP()).To(BeTrue())
			}
			for i := 0; i < pop.LenE(); i++ {
				e := pop.E(i)
				Expect(particle.Distance(e.Position, center)).To(BeNumerically("<=", 0.8661))
				Expect(e.RepulsionStrength).To(Equal(float32(1)))
			}
		})

		It("falls back to the small cube when no MP particle exists", func() {
			for i := 0; i < 50; i++ {
				Expect(pop.SpawnENearRandomMP()).To(BeTrue())
			}
			for i := 0; i < pop.LenE(); i++ {
				Expect(withinCube(pop.E(i).Position, mgl32.Vec3{}, 5)).To(BeTrue())
			}
		})

		It("gives MP spawns the configured attraction and size", func() {
			Expect(pop.SpawnMPRandom()).To(BeTrue())
			mp := pop.MP(0)
			Expect(mp.AttractionStrength).To(Equal(float32(3)))
			Expect(mp.Size).To(Equal(float32(1.5)))
			Expect(withinCube(mp.Position, mgl32.Vec3{}, 20)).To(BeTrue())
		})
	})

	Describe("reset", func() {
		It("repopulates to the configured initial counts", func() {
			cfg.InitialE = 10
			cfg.InitialMP = 2
			pop = sim.NewPopulation(cfg, 99)
			pop.AddERandomN(300)
			pop.SpawnMPRandom()

			n, err := pop.Apply(sim.Command{Kind: sim.Reset})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(12))
			Expect(pop.LenE()).To(Equal(10))
			Expect(pop.LenMP()).To(Equal(2))
		})

		It("is reproducible for a fixed seed", func() {
			cfg.InitialE = 5
			cfg.InitialMP = 1
			a := sim.NewPopulation(cfg, 7)
			b := sim.NewPopulation(cfg, 7)
			a.Reset()
			b.Reset()

			for i := 0; i < 5; i++ {
				Expect(a.E(i)).To(Equal(b.E(i)))
			}
			Expect(a.MP(0)).To(Equal(b.MP(0)))
		})
	})

	Describe("external force", func() {
		It("accumulates without moving the particle", func() {
			pop.InsertMP(particle.NewMP(mgl32.Vec3{1, 1, 1}, 3, 1.5))
			pop.ApplyForce(0, mgl32.Vec3{1, 0, 0})
			pop.ApplyForce(0, mgl32.Vec3{1, 0, 0})

			mp := pop.MP(0)
			Expect(mp.ExternalForce).To(Equal(mgl32.Vec3{2, 0, 0}))
			Expect(mp.Position).To(Equal(mgl32.Vec3{1, 1, 1}))
		})
	})
})

var _ = Describe("Command", func() {
	DescribeTable("ParseCommand",
		func(name string, want sim.CommandKind) {
			cmd, err := sim.ParseCommand(name, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Kind).To(Equal(want))
			Expect(cmd.Count).To(Equal(3))
		},
		Entry("add e", "add_e", sim.AddE),
		Entry("add mp", "ADD_MP", sim.AddMP),
		Entry("remove e", " remove_e ", sim.RemoveE),
		Entry("remove mp", "remove_mp", sim.RemoveMP),
		Entry("reset", "reset", sim.Reset),
		Entry("batch add", "add_e_batch", sim.AddEBatch),
		Entry("batch remove", "remove_e_batch", sim.RemoveEBatch),
	)

	It("rejects unknown names", func() {
		_, err := sim.ParseCommand("explode", 0)
		Expect(err).To(MatchError(sim.ErrUnknownCommand))
	})

	It("formats batch commands with their count", func() {
		Expect(sim.Command{Kind: sim.AddEBatch, Count: 100}.String()).To(Equal("add_e_batch(100)"))
		Expect(sim.Command{Kind: sim.RemoveMP}.String()).To(Equal("remove_mp"))
	})
})
