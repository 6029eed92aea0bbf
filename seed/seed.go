// Package seed loads a small set of sample clients and projects.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"backendprojects/graph/model"
	"backendprojects/store"
)

var ErrAlreadySeeded = errors.New("store already holds clients")

type sampleProject struct {
	Name        string
	Description string
	Status      model.ProjectStatus
}

type sampleClient struct {
	Client   model.Client
	Projects []sampleProject
}

var samples = []sampleClient{
	{
		Client: model.Client{Name: "Tony Stark", Email: "ironman@gmail.com", Phone: "343-567-4333"},
		Projects: []sampleProject{
			{"eCommerce Website", "A storefront with product catalogue, cart and checkout.", model.StatusInProgress},
		},
	},
	{
		Client: model.Client{Name: "Natasha Romanova", Email: "blackwidow@gmail.com", Phone: "223-567-3322"},
		Projects: []sampleProject{
			{"Dating App", "A mobile matching app with chat.", model.StatusInProgress},
			{"SEO Project", "Search ranking review and content plan for the company site.", model.StatusNotStarted},
		},
	},
	{
		Client: model.Client{Name: "Thor Odinson", Email: "thor@gmail.com", Phone: "324-331-4333"},
		Projects: []sampleProject{
			{"Design Prototype", "Clickable prototype for the new booking flow.", model.StatusCompleted},
		},
	},
	{
		Client: model.Client{Name: "Steve Rogers", Email: "steve@gmail.com", Phone: "344-562-6787"},
		Projects: []sampleProject{
			{"Auction Website", "Timed auctions with live bidding.", model.StatusNotStarted},
		},
	},
	{
		Client: model.Client{Name: "Bruce Banner", Email: "bruce@gmail.com", Phone: "321-468-8887"},
		Projects: []sampleProject{
			{"Inventory Dashboard", "Stock levels and reorder alerts across warehouses.", model.StatusInProgress},
		},
	},
}

type Result struct {
	Clients  int
	Projects int
}

// Run inserts the sample data. Unless force is set it refuses to touch a
// store that already has clients.
func Run(ctx context.Context, s store.Store, force bool, log logrus.FieldLogger) (Result, error) {
	var res Result

	if !force {
		existing, err := s.Clients().FindAll(ctx)
		if err != nil {
			return res, fmt.Errorf("list clients: %w", err)
		}
		if len(existing) > 0 {
			return res, ErrAlreadySeeded
		}
	}

	for _, sc := range samples {
		client := sc.Client
		saved, err := s.Clients().Insert(ctx, &client)
		if err != nil {
			return res, fmt.Errorf("insert client %s: %w", sc.Client.Name, err)
		}
		res.Clients++

		for _, sp := range sc.Projects {
			_, err := s.Projects().Insert(ctx, &model.Project{
				Name:        sp.Name,
				Description: sp.Description,
				Status:      sp.Status,
				ClientID:    saved.ID,
			})
			if err != nil {
				return res, fmt.Errorf("insert project %s: %w", sp.Name, err)
			}
			res.Projects++
		}
		log.WithFields(logrus.Fields{"client_id": saved.ID, "projects": len(sc.Projects)}).Debug("seeded client")
	}
	return res, nil
}
