// lwadmin is an interactive admin tool for inspecting a LearnWorlds user
// and manually enrolling or unenrolling them.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/securityexcellence/lwsync/config"
	"github.com/securityexcellence/lwsync/internal/external/learnworlds"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewLW()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	client := learnworlds.New(
		cfg.LWAPIBase,
		cfg.LWClient,
		cfg.LWToken,
		&http.Client{Timeout: cfg.HTTPLWTimeout},
	)

	ctx := context.Background()
	in := bufio.NewReader(os.Stdin)

	email := prompt(in, "Enter user email: ")
	if email == "" {
		log.Fatal("email is required")
	}

	user, courses, products, err := fetchUserDetails(ctx, client, email)
	if errors.Is(err, learnworlds.ErrNotFound) {
		log.Fatalf("No user with email %s in the school", email)
	}
	if err != nil {
		log.Fatalf("Fetch error: %s", err)
	}

	fmt.Printf("\nUser: %s (%s), suspended=%v\n", user.Username, user.Email, user.Suspended)

	fmt.Println("\nAssigned courses:")
	for i, c := range courses {
		fmt.Printf("%d. %s (ID: %s)\n", i+1, c.Name, c.ID)
	}

	fmt.Println("\nProducts:")
	for i, p := range products {
		fmt.Printf("%d. %s (ID: %s, Type: %s)\n", i+1, p.Name, p.ID, p.Type)
	}

	if len(products) > 0 {
		if n := promptInt(in, fmt.Sprintf("\nProduct number to unenroll (1-%d, empty to skip): ", len(products))); n >= 1 && n <= len(products) {
			p := products[n-1]
			resp, err := client.Unenroll(ctx, email, p.ID, p.Type)
			if err != nil {
				log.Fatalf("Unenroll error: %s", err)
			}
			fmt.Printf("Unenroll response: %s\n", resp)
		}
	}

	if productID := prompt(in, "\nProduct ID to enroll (empty to skip): "); productID != "" {
		productType := prompt(in, "Product type (bundle/course) [bundle]: ")
		if productType == "" {
			productType = "bundle"
		}
		price := 0.0
		if raw := prompt(in, "Price [0]: "); raw != "" {
			price, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				log.Fatalf("invalid price: %s", raw)
			}
		}

		resp, err := client.Enroll(ctx, email, learnworlds.EnrollmentRequest{
			ProductID:           productID,
			ProductType:         productType,
			Justification:       "Added by admin",
			Price:               price,
			SendEnrollmentEmail: true,
		})
		if err != nil {
			log.Fatalf("Enroll error: %s", err)
		}
		fmt.Printf("Enroll response: %s\n", resp)
	}

	fmt.Println("\nDone!")
}

// fetchUserDetails loads the user, their courses and their products in
// parallel; the three reads are independent.
func fetchUserDetails(ctx context.Context, client *learnworlds.Client, email string) (
	*learnworlds.User, []learnworlds.Course, []learnworlds.Product, error,
) {
	var (
		user     *learnworlds.User
		courses  []learnworlds.Course
		products []learnworlds.Product
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		user, err = client.GetUser(ctx, email)
		return err
	})
	g.Go(func() (err error) {
		courses, err = client.GetUserCourses(ctx, email)
		return err
	})
	g.Go(func() (err error) {
		products, err = client.GetUserProducts(ctx, email)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return user, courses, products, nil
}

func prompt(in *bufio.Reader, msg string) string {
	fmt.Print(msg)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptInt(in *bufio.Reader, msg string) int {
	raw := prompt(in, msg)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
