package main

import (
	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section"
	sectionrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section/repo"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert missing section defaults",
	Long:  "Insert the section visibility rows that do not exist yet. Existing rows are left untouched.\nWithout --file the built-in defaults are used.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		defaults, err := section.LoadSeedFile(path)
		if err != nil {
			return err
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		// running servers evict through NOTIFY
		store := cache.New(cache.ConfigFromEnv(), e.sugar)
		store.AddBroadcaster(cache.NewPGNotifier(e.db))
		svc := section.NewService(sectionrepo.NewRepo(e.db), mutation.NewKit(nil, store, e.sugar), store)
		_, err = svc.Seed(cmd.Context(), defaults)
		return err
	},
}

func init() {
	seedCmd.Flags().String("file", "", "YAML seed file (sections: [...])")
	rootCmd.AddCommand(seedCmd)
}
